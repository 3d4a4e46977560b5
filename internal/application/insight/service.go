package insight

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/admitlens/admitlens/internal/application"
	"github.com/admitlens/admitlens/internal/domain/ai"
	"github.com/admitlens/admitlens/internal/domain/analysis"
	"github.com/admitlens/admitlens/internal/domain/audit"
	domain "github.com/admitlens/admitlens/internal/domain/insight"
	"github.com/admitlens/admitlens/internal/domain/profile"
)

// Service implements the institution-fit use case. The fit report is opaque
// (no per-category decomposition), so the cache is coarse-grained: one
// fingerprint over the whole relevant input per (profile, institution) pair,
// and any change triggers a full recompute.
type Service struct {
	Repo        domain.Repository
	AI          ai.Client
	Transcripts audit.TranscriptStore // optional
	Audit       audit.Repository      // optional
	Clock       application.Clock
	Timeout     time.Duration

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

// InsightCommand carries one institution-fit request.
type InsightCommand struct {
	TenantID     string
	ProfileID    string
	Profile      profile.Profile
	Institution  domain.Institution
	ForceRefresh bool
}

// InsightOutcome is what the caller gets back. Fit reports are never partial.
type InsightOutcome struct {
	Report domain.Report `json:"report"`
	Cached bool          `json:"cached"`
}

// Insight returns the fit report for a (profile, institution) pair, reusing
// the cached report when the relevant input is unchanged.
func (s *Service) Insight(ctx context.Context, cmd InsightCommand) (InsightOutcome, error) {
	key := cmd.TenantID + "/" + cmd.ProfileID + "/" + cmd.Institution.ID
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	// One fingerprint across the full profile and the institution: any
	// semantic change to either invalidates the pair.
	fresh := analysis.Fingerprint(struct {
		Profile     profile.Profile    `json:"profile"`
		Institution domain.Institution `json:"institution"`
	}{cmd.Profile, cmd.Institution})

	if !cmd.ForceRefresh {
		stored, err := s.Repo.Get(ctx, cmd.TenantID, cmd.ProfileID, cmd.Institution.ID)
		if err != nil {
			return InsightOutcome{}, fmt.Errorf("load insight record: %w", err)
		}
		if stored != nil && !analysis.ResolveChanged(fresh, stored.Fingerprint) {
			return InsightOutcome{Report: stored.Report, Cached: true}, nil
		}
	}

	start := s.Clock.Now()
	resp, err := s.invoke(ctx, ai.FitRequest{Profile: cmd.Profile, Institution: cmd.Institution})
	if err != nil {
		return InsightOutcome{}, err
	}
	if err := ctx.Err(); err != nil {
		return InsightOutcome{}, err
	}
	if resp.Report.FitScore < 1 || resp.Report.FitScore > 10 {
		return InsightOutcome{}, fmt.Errorf("fit score out of range: %v: %w", resp.Report.FitScore, ai.ErrMalformedOutput)
	}

	rec := &domain.Record{
		Report:      resp.Report,
		Fingerprint: fresh,
		UpdatedAt:   s.Clock.Now(),
	}
	if err := s.Repo.Put(ctx, cmd.TenantID, cmd.ProfileID, cmd.Institution.ID, rec); err != nil {
		return InsightOutcome{}, fmt.Errorf("persist insight record: %w", err)
	}

	// Best-effort and off the request path: the subject lock is still held
	// here, so a slow archive write must not extend it.
	go s.recordAudit(cmd, resp.Raw, s.Clock.Now().Sub(start))

	return InsightOutcome{Report: resp.Report}, nil
}

// Latest returns the stored record for a pair, or nil when none exists.
func (s *Service) Latest(ctx context.Context, tenant, profileID, institutionID string) (*domain.Record, error) {
	return s.Repo.Get(ctx, tenant, profileID, institutionID)
}

func (s *Service) invoke(ctx context.Context, req ai.FitRequest) (*ai.FitResponse, error) {
	cctx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	resp, err := s.AI.AnalyzeFit(cctx, req)
	if err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) || errors.Is(err, ai.ErrMalformedOutput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}
	return resp, nil
}

func (s *Service) recordAudit(cmd InsightCommand, raw string, took time.Duration) {
	if s.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry := &audit.Entry{
		ID:            audit.EntryID(uuid.New().String()),
		TenantID:      cmd.TenantID,
		ProfileID:     cmd.ProfileID,
		InstitutionID: cmd.Institution.ID,
		Kind:          "fit",
		Mode:          string(ai.ModeFull),
		DurationMS:    took.Milliseconds(),
		CreatedAt:     s.Clock.Now(),
	}
	if s.Transcripts != nil && raw != "" {
		key := fmt.Sprintf("%s/%s/%s/%s.json", cmd.TenantID, cmd.ProfileID, cmd.Institution.ID, entry.ID)
		url, err := s.Transcripts.Put(ctx, key, []byte(raw), "application/json")
		if err != nil {
			log.Printf("transcript archive failed for %s/%s/%s: %v", cmd.TenantID, cmd.ProfileID, cmd.Institution.ID, err)
		} else {
			entry.TranscriptURL = url
		}
	}
	if err := s.Audit.Save(ctx, entry); err != nil {
		log.Printf("audit save failed for %s/%s/%s: %v", cmd.TenantID, cmd.ProfileID, cmd.Institution.ID, err)
	}
}
