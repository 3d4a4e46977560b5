package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/admitlens/admitlens/internal/application"
	"github.com/admitlens/admitlens/internal/domain/ai"
	domain "github.com/admitlens/admitlens/internal/domain/analysis"
	"github.com/admitlens/admitlens/internal/domain/audit"
	"github.com/admitlens/admitlens/internal/domain/profile"
)

// Service implements the profile-analysis use case: fingerprint the incoming
// profile, decide what changed against the cached record, invoke the analyzer
// for no more than the dirty slice, merge, persist.
// Safe for concurrent use; recomputes for the same profile are serialized.
type Service struct {
	Repo        domain.Repository
	AI          ai.Client
	Transcripts audit.TranscriptStore // optional
	Audit       audit.Repository      // optional
	Clock       application.Clock
	// Timeout bounds each analyzer invocation. Zero means no bound beyond
	// the caller's context.
	Timeout time.Duration

	locks *application.SubjectLocks
}

func NewService(repo domain.Repository, client ai.Client, timeout time.Duration) *Service {
	return &Service{
		Repo:    repo,
		AI:      client,
		Clock:   application.SystemClock{},
		Timeout: timeout,
		locks:   application.NewSubjectLocks(),
	}
}

// AnalyzeCommand carries one analysis request.
type AnalyzeCommand struct {
	TenantID  string
	ProfileID string
	Profile   profile.Profile
	// ForceRefresh bypasses the cache entirely: fingerprints are neither
	// consulted nor compared, the analyzer always runs in full mode.
	ForceRefresh bool
	// AllowDegraded permits substituting a placeholder narrative when the
	// analyzer's narrative output is unusable. Scores are never substituted.
	AllowDegraded bool
}

// AnalyzeOutcome is what the caller gets back.
type AnalyzeOutcome struct {
	Result  domain.Result `json:"result"`
	Cached  bool          `json:"cached"`
	Partial bool          `json:"partial"`
}

// Analyze runs the selective-recompute pipeline for one profile.
//
// Outcomes, in order: forced refresh → full recompute; no stored record or
// every scored category dirty → full recompute; some categories dirty, or a
// context-only change → partial recompute merged with the prior result;
// nothing dirty → cache hit. On any analyzer failure the stored record is
// left untouched and the error is surfaced.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalyzeOutcome, error) {
	key := cmd.TenantID + "/" + cmd.ProfileID
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	fresh := domain.CategoryFingerprints(cmd.Profile)

	var stored *domain.CacheRecord
	if !cmd.ForceRefresh {
		var err error
		stored, err = s.Repo.Get(ctx, cmd.TenantID, cmd.ProfileID)
		if err != nil {
			return AnalyzeOutcome{}, fmt.Errorf("load cache record: %w", err)
		}
	}

	var dirty domain.DirtySet
	if stored == nil {
		// Covers forced refresh too: everything is treated as dirty and the
		// stored record is never consulted.
		dirty = domain.ResolveDirty(fresh, nil)
	} else {
		dirty = domain.ResolveDirty(fresh, stored.CategoryFingerprints)
		if dirty.Empty() {
			return AnalyzeOutcome{Result: stored.Result, Cached: true}, nil
		}
	}

	req := ai.ProfileRequest{Profile: cmd.Profile, Mode: ai.ModeFull}
	partial := stored != nil && !dirty.AllScored()
	if partial {
		req.Mode = ai.ModePartial
		req.Dirty = dirty.Categories
		req.ReferenceScores = referenceScores(stored.Result, dirty)
	}

	start := s.Clock.Now()
	resp, err := s.invoke(ctx, req)
	if err != nil {
		return AnalyzeOutcome{}, err
	}
	// The caller may have gone away while the analyzer was running; a result
	// nobody received must not silently appear in the cache.
	if err := ctx.Err(); err != nil {
		return AnalyzeOutcome{}, err
	}

	if err := validateScores(req, resp.Scores); err != nil {
		return AnalyzeOutcome{}, err
	}

	narrative := resp.Narrative
	degraded := false
	if narrativeEmpty(narrative) {
		if !cmd.AllowDegraded {
			return AnalyzeOutcome{}, fmt.Errorf("narrative missing from analyzer response: %w", ai.ErrMalformedOutput)
		}
		narrative = placeholderNarrative()
		degraded = true
	}

	var prior *domain.Result
	dirtyCats := domain.ScoredCategories
	if partial {
		prior = &stored.Result
		dirtyCats = dirty.Categories
	}
	merged, err := domain.Merge(prior, resp.Scores, dirtyCats, narrative)
	if err != nil {
		return AnalyzeOutcome{}, fmt.Errorf("merge analyzer response: %w", err)
	}
	merged.Degraded = degraded

	// Degraded results are served but never cached: the next request should
	// retry for a real narrative instead of pinning the placeholder.
	if !degraded {
		rec := &domain.CacheRecord{
			Result:               merged,
			CategoryFingerprints: fresh,
			UpdatedAt:            s.Clock.Now(),
		}
		if err := s.Repo.Put(ctx, cmd.TenantID, cmd.ProfileID, rec); err != nil {
			return AnalyzeOutcome{}, fmt.Errorf("persist cache record: %w", err)
		}
	}

	// Best-effort and off the request path: the subject lock is still held
	// here, so a slow archive write must not extend it.
	go s.recordAudit(cmd, req, resp.Raw, s.Clock.Now().Sub(start))

	return AnalyzeOutcome{Result: merged, Partial: partial}, nil
}

// Latest returns the stored record for a profile, or nil when none exists.
func (s *Service) Latest(ctx context.Context, tenant, profileID string) (*domain.CacheRecord, error) {
	return s.Repo.Get(ctx, tenant, profileID)
}

// AuditLog lists recorded analyzer invocations for a tenant, newest first.
func (s *Service) AuditLog(ctx context.Context, tenant string, page, pageSize int) ([]*audit.Entry, error) {
	if s.Audit == nil {
		return nil, nil
	}
	return s.Audit.Paginate(ctx, tenant, page, pageSize)
}

// invoke runs one analyzer call under the configured timeout and folds
// transport-level failures into the domain error taxonomy.
func (s *Service) invoke(ctx context.Context, req ai.ProfileRequest) (*ai.ProfileResponse, error) {
	cctx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	resp, err := s.AI.AnalyzeProfile(cctx, req)
	if err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) || errors.Is(err, ai.ErrMalformedOutput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}
	return resp, nil
}

// validateScores enforces the response contract: exactly the requested
// categories, every value in the 1–10 range.
func validateScores(req ai.ProfileRequest, scores map[domain.Category]float64) error {
	expected := req.Dirty
	if req.Mode == ai.ModeFull {
		expected = domain.ScoredCategories
	}
	if len(scores) != len(expected) {
		return fmt.Errorf("expected %d scores, got %d: %w", len(expected), len(scores), ai.ErrMalformedOutput)
	}
	for _, c := range expected {
		v, ok := scores[c]
		if !ok {
			return fmt.Errorf("missing score for %q: %w", c, ai.ErrMalformedOutput)
		}
		if v < 1 || v > 10 {
			return fmt.Errorf("score for %q out of range: %v: %w", c, v, ai.ErrMalformedOutput)
		}
	}
	return nil
}

// referenceScores collects the prior scores of the categories that are NOT
// being rescored, so the analyzer can judge the dirty ones in context.
func referenceScores(prior domain.Result, dirty domain.DirtySet) map[domain.Category]float64 {
	ref := make(map[domain.Category]float64)
	for _, c := range domain.ScoredCategories {
		if !dirty.Contains(c) {
			ref[c] = prior.Scores[c]
		}
	}
	return ref
}

func narrativeEmpty(n domain.Narrative) bool {
	return len(n.Strengths) == 0 && len(n.Weaknesses) == 0 && len(n.Improvements) == 0
}

func placeholderNarrative() domain.Narrative {
	return domain.Narrative{
		Strengths:    []string{"Narrative feedback is temporarily unavailable."},
		Weaknesses:   []string{"Narrative feedback is temporarily unavailable."},
		Improvements: []string{"Retry the analysis to get written feedback."},
	}
}

// recordAudit archives the transcript and writes the audit row. Best-effort:
// the analysis already succeeded, so failures here are only logged. Runs on a
// background context because the request may be finishing up.
func (s *Service) recordAudit(cmd AnalyzeCommand, req ai.ProfileRequest, raw string, took time.Duration) {
	if s.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry := &audit.Entry{
		ID:         audit.EntryID(uuid.New().String()),
		TenantID:   cmd.TenantID,
		ProfileID:  cmd.ProfileID,
		Kind:       "profile",
		Mode:       string(req.Mode),
		DurationMS: took.Milliseconds(),
		CreatedAt:  s.Clock.Now(),
	}
	for _, c := range req.Dirty {
		entry.Dirty = append(entry.Dirty, string(c))
	}
	if s.Transcripts != nil && raw != "" {
		key := fmt.Sprintf("%s/%s/%s.json", cmd.TenantID, cmd.ProfileID, entry.ID)
		url, err := s.Transcripts.Put(ctx, key, []byte(raw), "application/json")
		if err != nil {
			log.Printf("transcript archive failed for %s/%s: %v", cmd.TenantID, cmd.ProfileID, err)
		} else {
			entry.TranscriptURL = url
		}
	}
	if err := s.Audit.Save(ctx, entry); err != nil {
		log.Printf("audit save failed for %s/%s: %v", cmd.TenantID, cmd.ProfileID, err)
	}
}
