package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"
	"go-interview-backend/pkg/logger"
	"go-interview-backend/pkg/tts"
)

// VoiceConfig carries the synthesis knobs. MaxCharsPerRequest and
// MaxRequestsPerMessage bound a single logical message: longer text is
// chunked up to the budget and deterministically truncated beyond it.
type VoiceConfig struct {
	DefaultVoiceID        string
	ModelID               string
	DefaultStability      float64
	DefaultSimilarity     float64
	MaxCharsPerRequest    int
	MaxRequestsPerMessage int
	WarmupWorkers         int
}

const (
	warmupRetryDelay = 500 * time.Millisecond
	streamFrameSize  = 32 * 1024
)

type warmupHandle struct {
	cancel context.CancelFunc
}

type voiceUsecase struct {
	client        tts.Client
	cache         domain.AudioCacheRepository
	questions     domain.QuestionSource
	interviewRepo domain.InterviewRepository
	directoryRepo domain.DirectoryRepository
	cfg           VoiceConfig

	mu      sync.Mutex
	warmups map[int64]*warmupHandle
}

// NewVoiceUsecase creates the synthesis gateway.
func NewVoiceUsecase(
	client tts.Client,
	cache domain.AudioCacheRepository,
	questions domain.QuestionSource,
	interviewRepo domain.InterviewRepository,
	directoryRepo domain.DirectoryRepository,
	cfg VoiceConfig,
) domain.VoiceUsecase {
	if cfg.WarmupWorkers < 1 {
		cfg.WarmupWorkers = 1
	}
	return &voiceUsecase{
		client:        client,
		cache:         cache,
		questions:     questions,
		interviewRepo: interviewRepo,
		directoryRepo: directoryRepo,
		cfg:           cfg,
		warmups:       make(map[int64]*warmupHandle),
	}
}

// normalize fills provider defaults so equivalent requests share one cache
// key regardless of which optional fields the caller set.
func (uc *voiceUsecase) normalize(req domain.SynthesisRequest) domain.SynthesisRequest {
	if req.VoiceID == "" {
		req.VoiceID = uc.cfg.DefaultVoiceID
	}
	if req.ModelID == "" {
		req.ModelID = uc.cfg.ModelID
	}
	if req.Stability == 0 {
		req.Stability = uc.cfg.DefaultStability
	}
	if req.SimilarityBoost == 0 {
		req.SimilarityBoost = uc.cfg.DefaultSimilarity
	}
	return req
}

func (uc *voiceUsecase) providerRequest(req domain.SynthesisRequest, text string) tts.Request {
	return tts.Request{
		Text:            text,
		VoiceID:         req.VoiceID,
		Stability:       req.Stability,
		SimilarityBoost: req.SimilarityBoost,
		ModelID:         req.ModelID,
	}
}

// split applies the chunk budget, logging truncation as an observability
// signal rather than failing: partial speech beats none for a live prompt.
func (uc *voiceUsecase) split(text, cacheKey string) []string {
	chunks, truncated := tts.SplitText(text, uc.cfg.MaxCharsPerRequest, uc.cfg.MaxRequestsPerMessage)
	if truncated {
		kept := 0
		for _, c := range chunks {
			kept += len([]rune(c))
		}
		logger.Log.Warn("Synthesis text truncated to request budget",
			"cache_key", cacheKey,
			"total_chars", len([]rune(text)),
			"kept_chars", kept,
			"max_requests", uc.cfg.MaxRequestsPerMessage,
		)
	}
	return chunks
}

// mapProviderErr keeps "retry later" (connectivity) distinguishable from
// "the provider rejected this" in what the API returns.
func mapProviderErr(err error) *apperror.AppError {
	var provErr *tts.ProviderError
	switch {
	case errors.Is(err, tts.ErrUnreachable), errors.Is(err, context.DeadlineExceeded):
		return apperror.New(http.StatusServiceUnavailable, "Voice service is temporarily unavailable. Please try again.", err)
	case errors.As(err, &provErr):
		return apperror.New(http.StatusBadGateway, "Voice service could not process this request", err)
	default:
		return apperror.Internal(err)
	}
}

type chunkResult struct {
	data []byte
	err  error
}

// render performs the provider calls for all chunks with bounded
// parallelism and joins the audio in original text order. Calls may finish
// out of order; the join may not.
func (uc *voiceUsecase) render(ctx context.Context, req domain.SynthesisRequest, chunks []string) ([]byte, error) {
	results := make([][]byte, len(chunks))
	errs := make([]error, len(chunks))
	sem := make(chan struct{}, uc.cfg.WarmupWorkers)

	var wg sync.WaitGroup
	for i, text := range chunks {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = uc.client.Synthesize(ctx, uc.providerRequest(req, text))
		}(i, text)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return bytes.Join(results, nil), nil
}

// Synthesize returns the full audio buffer, cache first.
func (uc *voiceUsecase) Synthesize(ctx context.Context, req domain.SynthesisRequest) ([]byte, error) {
	req = uc.normalize(req)
	if domain.NormalizeSpeechText(req.Text) == "" {
		return nil, apperror.BadRequest("Text is required")
	}

	key := req.CacheKey()
	audio, err := uc.cache.Get(ctx, key)
	if err == nil {
		return audio, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		logger.Log.Warn("Audio cache read failed, synthesizing on demand", "cache_key", key, "error", err)
	}

	chunks := uc.split(req.Text, key)
	audio, err = uc.render(ctx, req, chunks)
	if err != nil {
		return nil, mapProviderErr(err)
	}

	if err := uc.cache.Put(ctx, key, audio, req); err != nil {
		logger.Log.Warn("Audio cache write failed", "cache_key", key, "error", err)
	}
	return audio, nil
}

// Stream lazily produces ordered audio chunks. Chunk k+1 is never delivered
// before chunk k even when the underlying provider calls complete out of
// order; consumption is serialized, the calls are not. A cancelled ctx
// (consumer disconnect) stops production instead of buffering unboundedly.
func (uc *voiceUsecase) Stream(ctx context.Context, req domain.SynthesisRequest) (<-chan domain.AudioChunk, error) {
	req = uc.normalize(req)
	if domain.NormalizeSpeechText(req.Text) == "" {
		return nil, apperror.BadRequest("Text is required")
	}

	key := req.CacheKey()
	out := make(chan domain.AudioChunk)

	if audio, err := uc.cache.Get(ctx, key); err == nil {
		go func() {
			defer close(out)
			select {
			case out <- domain.AudioChunk{Index: 0, Data: audio}:
			case <-ctx.Done():
			}
		}()
		return out, nil
	}

	chunks := uc.split(req.Text, key)
	if len(chunks) == 1 {
		go uc.streamSingle(ctx, req, key, chunks[0], out)
		return out, nil
	}

	// Fan out the provider calls, bounded; each result slot is buffered so
	// a worker never leaks when the consumer walks away early.
	results := make([]chan chunkResult, len(chunks))
	for i := range results {
		results[i] = make(chan chunkResult, 1)
	}
	sem := make(chan struct{}, uc.cfg.WarmupWorkers)
	for i, text := range chunks {
		go func(i int, text string) {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] <- chunkResult{err: ctx.Err()}
				return
			}
			defer func() { <-sem }()
			data, err := uc.client.Synthesize(ctx, uc.providerRequest(req, text))
			results[i] <- chunkResult{data: data, err: err}
		}(i, text)
	}

	go func() {
		defer close(out)
		assembled := make([][]byte, 0, len(chunks))
		for i := range chunks {
			var r chunkResult
			select {
			case r = <-results[i]:
			case <-ctx.Done():
				return
			}
			if r.err != nil {
				select {
				case out <- domain.AudioChunk{Index: i, Err: mapProviderErr(r.err)}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case out <- domain.AudioChunk{Index: i, Data: r.data}:
			case <-ctx.Done():
				return
			}
			assembled = append(assembled, r.data)
		}

		// Full render succeeded; populate the cache for later callers even
		// if the consumer disconnects right after the last chunk.
		full := bytes.Join(assembled, nil)
		if err := uc.cache.Put(context.WithoutCancel(ctx), key, full, req); err != nil {
			logger.Log.Warn("Audio cache write failed after stream", "cache_key", key, "error", err)
		}
	}()
	return out, nil
}

// streamSingle pipes the provider's streaming endpoint through in frames,
// so single-chunk text (the common case for questions) plays with no
// buffering delay.
func (uc *voiceUsecase) streamSingle(ctx context.Context, req domain.SynthesisRequest, key, text string, out chan<- domain.AudioChunk) {
	defer close(out)

	body, err := uc.client.Stream(ctx, uc.providerRequest(req, text))
	if err != nil {
		select {
		case out <- domain.AudioChunk{Index: 0, Err: mapProviderErr(err)}:
		case <-ctx.Done():
		}
		return
	}
	defer body.Close()

	var full bytes.Buffer
	frame := make([]byte, streamFrameSize)
	index := 0
	for {
		n, readErr := body.Read(frame)
		if n > 0 {
			data := make([]byte, n)
			copy(data, frame[:n])
			full.Write(data)
			select {
			case out <- domain.AudioChunk{Index: index, Data: data}:
				index++
			case <-ctx.Done():
				return
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			select {
			case out <- domain.AudioChunk{Index: index, Err: mapProviderErr(readErr)}:
			case <-ctx.Done():
			}
			return
		}
	}

	if err := uc.cache.Put(context.WithoutCancel(ctx), key, full.Bytes(), req); err != nil {
		logger.Log.Warn("Audio cache write failed after stream", "cache_key", key, "error", err)
	}
}

// Warmup pre-renders audio for every question of the interview on a bounded
// worker pool and returns immediately with the queued count. Failures are
// logged and isolated per question; nothing here can fail the candidate's
// interview flow.
func (uc *voiceUsecase) Warmup(ctx context.Context, interviewID int64) (int, error) {
	interview, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, apperror.NotFound("Interview not found")
		}
		return 0, apperror.Internal(err)
	}
	if interview.IsTerminal() {
		return 0, nil
	}

	voiceID := uc.cfg.DefaultVoiceID
	if agent, err := uc.directoryRepo.GetAgent(ctx, interview.AgentID); err == nil && agent.VoiceID != "" {
		voiceID = agent.VoiceID
	} else if err != nil {
		logger.Log.Warn("Agent lookup failed during warmup, using default voice", "interview_id", interviewID, "error", err)
	}

	questions, err := uc.questions.QuestionsForInterview(ctx, interviewID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	if len(questions) == 0 {
		return 0, nil
	}

	// Detached context: warmup outlives the triggering request and is torn
	// down by CancelWarmup when the interview reaches a terminal state.
	wctx, cancel := context.WithCancel(context.Background())
	handle := &warmupHandle{cancel: cancel}

	uc.mu.Lock()
	if prev, ok := uc.warmups[interviewID]; ok {
		prev.cancel()
	}
	uc.warmups[interviewID] = handle
	uc.mu.Unlock()

	jobs := make(chan domain.Question)
	var wg sync.WaitGroup
	for w := 0; w < uc.cfg.WarmupWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range jobs {
				uc.warmOne(wctx, domain.SynthesisRequest{
					Text:            q.Text,
					VoiceID:         voiceID,
					Stability:       uc.cfg.DefaultStability,
					SimilarityBoost: uc.cfg.DefaultSimilarity,
					ModelID:         uc.cfg.ModelID,
				})
			}
		}()
	}

	go func() {
	feed:
		for _, q := range questions {
			select {
			case jobs <- q:
			case <-wctx.Done():
				break feed
			}
		}
		close(jobs)
		wg.Wait()
		cancel()

		uc.mu.Lock()
		if uc.warmups[interviewID] == handle {
			delete(uc.warmups, interviewID)
		}
		uc.mu.Unlock()
	}()

	return len(questions), nil
}

// warmOne renders and caches a single question. Connectivity failures get
// one retry with a short backoff; provider rejections do not, since the
// same request would fail again.
func (uc *voiceUsecase) warmOne(ctx context.Context, req domain.SynthesisRequest) {
	req = uc.normalize(req)
	key := req.CacheKey()

	if _, err := uc.cache.Get(ctx, key); err == nil {
		return
	}

	chunks := uc.split(req.Text, key)
	audio, err := uc.render(ctx, req, chunks)
	if err != nil && errors.Is(err, tts.ErrUnreachable) {
		select {
		case <-time.After(warmupRetryDelay):
		case <-ctx.Done():
			return
		}
		audio, err = uc.render(ctx, req, chunks)
	}
	if err != nil {
		if ctx.Err() == nil {
			logger.Log.Warn("Warmup synthesis failed", "cache_key", key, "error", err)
		}
		return
	}

	if err := uc.cache.Put(ctx, key, audio, req); err != nil {
		logger.Log.Warn("Warmup cache write failed", "cache_key", key, "error", err)
	}
}

// CancelWarmup aborts any in-flight warmup for the interview.
func (uc *voiceUsecase) CancelWarmup(interviewID int64) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if handle, ok := uc.warmups[interviewID]; ok {
		handle.cancel()
		delete(uc.warmups, interviewID)
	}
}

func (uc *voiceUsecase) Voices(ctx context.Context) ([]domain.Voice, error) {
	providerVoices, err := uc.client.Voices(ctx)
	if err != nil {
		return nil, mapProviderErr(err)
	}
	voices := make([]domain.Voice, 0, len(providerVoices))
	for _, v := range providerVoices {
		voices = append(voices, domain.Voice{ID: v.ID, Name: v.Name, Category: v.Category})
	}
	return voices, nil
}
