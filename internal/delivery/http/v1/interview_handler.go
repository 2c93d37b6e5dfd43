package v1

import (
	"fmt"
	"net/http"
	"time"

	"go-interview-backend/internal/delivery/http/response"
	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"
	"go-interview-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const uploadURLTTL = 15 * time.Minute

type InterviewHandler struct {
	interviewUC domain.InterviewUsecase
	voiceUC     domain.VoiceUsecase
	audioStore  *storage.AudioStore
}

// NewInterviewHandler registers the candidate interview routes. All of them
// sit behind the session middleware; the interview ID comes from the session
// claims.
func NewInterviewHandler(session *gin.RouterGroup, interviewUC domain.InterviewUsecase, voiceUC domain.VoiceUsecase, audioStore *storage.AudioStore) {
	handler := &InterviewHandler{
		interviewUC: interviewUC,
		voiceUC:     voiceUC,
		audioStore:  audioStore,
	}

	session.GET("/interview", handler.GetState)
	session.POST("/interview/start", handler.Start)
	session.POST("/interview/responses", handler.SaveResponse)
	session.POST("/interview/complete", handler.Complete)
	session.POST("/interview/audio/warmup", handler.Warmup)
	session.POST("/interview/audio/upload-url", handler.UploadURL)
}

// interviewIDFromCtx reads the interview ID set by the session middleware.
func interviewIDFromCtx(c *gin.Context) (int64, bool) {
	v, ok := c.Get(string(domain.KeyInterviewID))
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetState godoc
// @Summary      Get interview state
// @Description  Returns the interview and its responses so a reconnecting client can resume where it left off. Terminal states are returned too.
// @Tags         interview
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.InterviewState}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /interview [get]
func (h *InterviewHandler) GetState(c *gin.Context) {
	interviewID, ok := interviewIDFromCtx(c)
	if !ok {
		c.Error(apperror.Unauthorized("Candidate session required"))
		return
	}

	state, err := h.interviewUC.GetState(c.Request.Context(), interviewID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview state retrieved", state)
}

// Start godoc
// @Summary      Start the interview
// @Description  Transitions the interview to in_progress. Idempotent: starting an already running interview succeeds without touching the original start time.
// @Tags         interview
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      401  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      410  {object}  response.Response
// @Router       /interview/start [post]
func (h *InterviewHandler) Start(c *gin.Context) {
	interviewID, ok := interviewIDFromCtx(c)
	if !ok {
		c.Error(apperror.Unauthorized("Candidate session required"))
		return
	}

	interview, err := h.interviewUC.Start(c.Request.Context(), interviewID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview started", interview)
}

// SaveResponse godoc
// @Summary      Save a question response
// @Description  Appends one answered question. The caller supplies response_order, so answers arriving out of network order still land in their question slots.
// @Tags         interview
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        answer  body      domain.SaveResponseInput  true  "Answered question"
// @Success      201     {object}  response.Response{data=domain.InterviewResponse}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /interview/responses [post]
func (h *InterviewHandler) SaveResponse(c *gin.Context) {
	interviewID, ok := interviewIDFromCtx(c)
	if !ok {
		c.Error(apperror.Unauthorized("Candidate session required"))
		return
	}

	var input domain.SaveResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid response payload: " + err.Error()))
		return
	}

	resp, err := h.interviewUC.SaveResponse(c.Request.Context(), interviewID, input)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Response saved", resp)
}

// Complete godoc
// @Summary      Complete the interview
// @Description  Transitions the interview to its terminal completed state and cancels any audio warmup still running for it.
// @Tags         interview
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.Interview}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /interview/complete [post]
func (h *InterviewHandler) Complete(c *gin.Context) {
	interviewID, ok := interviewIDFromCtx(c)
	if !ok {
		c.Error(apperror.Unauthorized("Candidate session required"))
		return
	}

	interview, err := h.interviewUC.Complete(c.Request.Context(), interviewID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview completed", interview)
}

// Warmup godoc
// @Summary      Pre-render question audio
// @Description  Queues background synthesis of every question of this interview so playback starts instantly. Fire-and-forget: returns the queued count immediately and never fails on synthesis errors.
// @Tags         interview
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /interview/audio/warmup [post]
func (h *InterviewHandler) Warmup(c *gin.Context) {
	interviewID, ok := interviewIDFromCtx(c)
	if !ok {
		c.Error(apperror.Unauthorized("Candidate session required"))
		return
	}

	queued, err := h.voiceUC.Warmup(c.Request.Context(), interviewID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusAccepted, "Audio warmup queued", gin.H{"queued": queued})
}

type uploadURLRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	QuestionID  string `json:"question_id"`
}

// UploadURL godoc
// @Summary      Get a presigned answer-audio upload URL
// @Description  Returns a short-lived presigned URL the client PUTs the recorded answer to. The object key is returned so it can be attached to the response record.
// @Tags         interview
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        upload  body      uploadURLRequest  true  "Upload metadata"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      503     {object}  response.Response
// @Router       /interview/audio/upload-url [post]
func (h *InterviewHandler) UploadURL(c *gin.Context) {
	interviewID, ok := interviewIDFromCtx(c)
	if !ok {
		c.Error(apperror.Unauthorized("Candidate session required"))
		return
	}

	if h.audioStore == nil {
		c.Error(apperror.New(http.StatusServiceUnavailable, "Audio storage is not configured", nil))
		return
	}

	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("content_type is required"))
		return
	}

	key := fmt.Sprintf("interviews/%d/responses/%s", interviewID, uuid.NewString())
	url, err := h.audioStore.PresignUpload(c.Request.Context(), key, req.ContentType, uploadURLTTL)
	if err != nil {
		c.Error(apperror.New(http.StatusServiceUnavailable, "Could not create upload URL", err))
		return
	}

	response.Success(c, http.StatusOK, "Upload URL created", gin.H{
		"upload_url": url,
		"object_key": key,
		"expires_in": int(uploadURLTTL.Seconds()),
	})
}
