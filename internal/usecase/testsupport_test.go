package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"

	"github.com/stretchr/testify/mock"
)

// In-memory repositories with the same atomicity semantics as the Postgres
// implementations, so the concurrency properties can be exercised for real.

type memInviteRepo struct {
	mu      sync.Mutex
	byCode  map[string]*domain.Invite
	byID    map[int64]*domain.Invite
	nextID  int64
}

func newMemInviteRepo() *memInviteRepo {
	return &memInviteRepo{byCode: make(map[string]*domain.Invite), byID: make(map[int64]*domain.Invite)}
}

func (r *memInviteRepo) add(inv domain.Invite) *domain.Invite {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	inv.ID = r.nextID
	stored := inv
	r.byCode[inv.ShortCode] = &stored
	r.byID[inv.ID] = &stored
	return &stored
}

func (r *memInviteRepo) GetByShortCode(_ context.Context, code string) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *memInviteRepo) GetByID(_ context.Context, id int64) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *memInviteRepo) ConsumeUse(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byCode[code]
	if !ok || inv.Status != domain.InviteStatusActive || inv.UseCount >= inv.MaxUses {
		return false, nil
	}
	inv.UseCount++
	return true, nil
}

func (r *memInviteRepo) MarkExpired(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.byID[id]; ok && inv.Status == domain.InviteStatusActive {
		inv.Status = domain.InviteStatusExpired
	}
	return nil
}

func (r *memInviteRepo) Revoke(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok || inv.Status != domain.InviteStatusActive {
		return domain.ErrNotFound
	}
	inv.Status = domain.InviteStatusRevoked
	return nil
}

func (r *memInviteRepo) Replace(_ context.Context, id int64, newCode string, expiresAt time.Time) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.byCode, inv.ShortCode)
	inv.ShortCode = newCode
	inv.UseCount = 0
	inv.ExpiresAt = expiresAt
	inv.Status = domain.InviteStatusActive
	r.byCode[newCode] = inv
	cp := *inv
	return &cp, nil
}

type memInterviewRepo struct {
	mu         sync.Mutex
	interviews map[int64]*domain.Interview
	responses  map[int64][]domain.InterviewResponse
	nextRespID int64
}

func newMemInterviewRepo() *memInterviewRepo {
	return &memInterviewRepo{
		interviews: make(map[int64]*domain.Interview),
		responses:  make(map[int64][]domain.InterviewResponse),
	}
}

func (r *memInterviewRepo) add(iv domain.Interview) *domain.Interview {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := iv
	r.interviews[iv.ID] = &stored
	return &stored
}

func (r *memInterviewRepo) GetByID(_ context.Context, id int64) (*domain.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *iv
	return &cp, nil
}

func (r *memInterviewRepo) MarkStarted(_ context.Context, id int64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[id]
	if !ok || iv.Status != domain.InterviewStatusNotStarted {
		return false, nil
	}
	iv.Status = domain.InterviewStatusInProgress
	iv.StartedAt = &at
	iv.UpdatedAt = at
	return true, nil
}

func (r *memInterviewRepo) MarkCompleted(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[id]
	if !ok || iv.Status != domain.InterviewStatusInProgress {
		return domain.ErrNotFound
	}
	iv.Status = domain.InterviewStatusCompleted
	iv.CompletedAt = &at
	iv.UpdatedAt = at
	return nil
}

func (r *memInterviewRepo) MarkLinkExpired(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[id]
	if ok && (iv.Status == domain.InterviewStatusNotStarted || iv.Status == domain.InterviewStatusInProgress) {
		iv.Status = domain.InterviewStatusLinkExpired
	}
	return nil
}

func (r *memInterviewRepo) AddResponse(_ context.Context, resp *domain.InterviewResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.responses[resp.InterviewID] {
		if existing.ResponseOrder == resp.ResponseOrder {
			return apperror.Conflict("A response with this order already exists for this interview")
		}
	}
	r.nextRespID++
	resp.ID = r.nextRespID
	resp.CreatedAt = time.Now()
	r.responses[resp.InterviewID] = append(r.responses[resp.InterviewID], *resp)
	return nil
}

func (r *memInterviewRepo) ListResponses(_ context.Context, interviewID int64) ([]domain.InterviewResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.InterviewResponse(nil), r.responses[interviewID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ResponseOrder < out[j].ResponseOrder })
	return out, nil
}

func (r *memInterviewRepo) AdvanceQuestionIndex(_ context.Context, id int64, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if iv, ok := r.interviews[id]; ok && iv.CurrentQuestionIndex < index {
		iv.CurrentQuestionIndex = index
	}
	return nil
}

type memAudioCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemAudioCache() *memAudioCache {
	return &memAudioCache{entries: make(map[string][]byte)}
}

func (c *memAudioCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	audio, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), audio...), nil
}

func (c *memAudioCache) Put(_ context.Context, key string, audio []byte, _ domain.SynthesisRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = append([]byte(nil), audio...)
	}
	return nil
}

func (c *memAudioCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type memVoiceCloneRepo struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func newMemVoiceCloneRepo() *memVoiceCloneRepo {
	return &memVoiceCloneRepo{last: make(map[string]time.Time)}
}

func (r *memVoiceCloneRepo) TryRecord(_ context.Context, userID string, now time.Time, cooldown time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.last[userID]; ok && now.Sub(prev) < cooldown {
		return false, nil
	}
	r.last[userID] = now
	return true, nil
}

// Mock collaborators for the externally-owned lookups.

type MockDirectoryRepo struct {
	mock.Mock
}

func (m *MockDirectoryRepo) GetAgent(ctx context.Context, id string) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *MockDirectoryRepo) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockDirectoryRepo) GetApplicant(ctx context.Context, id string) (*domain.Applicant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Applicant), args.Error(1)
}

type MockQuestionSource struct {
	mock.Mock
}

func (m *MockQuestionSource) QuestionsForInterview(ctx context.Context, interviewID int64) ([]domain.Question, error) {
	args := m.Called(ctx, interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Question), args.Error(1)
}
