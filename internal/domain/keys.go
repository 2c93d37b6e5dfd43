package domain

type CtxKey string

// Context keys populated by the candidate session middleware from validated
// token claims.
const (
	KeyInterviewID CtxKey = "InterviewID"
	KeyApplicantID CtxKey = "ApplicantID"
	KeyAgentID     CtxKey = "AgentID"
	KeyJobID       CtxKey = "JobID"
)
