package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitlens/admitlens/internal/domain/ai"
	domain "github.com/admitlens/admitlens/internal/domain/analysis"
	"github.com/admitlens/admitlens/internal/domain/audit"
	"github.com/admitlens/admitlens/internal/domain/profile"
)

// fakeRepo is an in-memory analysis.Repository.
type fakeRepo struct {
	mu      sync.Mutex
	records map[string]*domain.CacheRecord
	puts    int
	getErr  error
	putErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*domain.CacheRecord)}
}

func (r *fakeRepo) Get(ctx context.Context, tenant, profileID string) (*domain.CacheRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	rec, ok := r.records[tenant+"/"+profileID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeRepo) Put(ctx context.Context, tenant, profileID string, rec *domain.CacheRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.puts++
	cp := *rec
	r.records[tenant+"/"+profileID] = &cp
	return nil
}

// fakeAI is a scripted ai.Client.
type fakeAI struct {
	mu      sync.Mutex
	calls   []ai.ProfileRequest
	respond func(req ai.ProfileRequest) (*ai.ProfileResponse, error)
	delay   time.Duration
}

func (f *fakeAI) AnalyzeProfile(ctx context.Context, req ai.ProfileRequest) (*ai.ProfileResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.respond(req)
}

func (f *fakeAI) AnalyzeFit(ctx context.Context, req ai.FitRequest) (*ai.FitResponse, error) {
	return nil, errors.New("not used")
}

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAI) lastCall() ai.ProfileRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// respondScripted returns the requested categories scored from the given map,
// with a fixed narrative.
func respondScripted(scores map[domain.Category]float64) func(ai.ProfileRequest) (*ai.ProfileResponse, error) {
	return func(req ai.ProfileRequest) (*ai.ProfileResponse, error) {
		wanted := req.Dirty
		if req.Mode == ai.ModeFull {
			wanted = domain.ScoredCategories
		}
		out := make(map[domain.Category]float64, len(wanted))
		for _, c := range wanted {
			out[c] = scores[c]
		}
		return &ai.ProfileResponse{
			Scores: out,
			Narrative: domain.Narrative{
				Strengths:    []string{"strong academics"},
				Weaknesses:   []string{"limited leadership"},
				Improvements: []string{"seek leadership roles"},
			},
			Raw: `{"scores":{}}`,
		}, nil
	}
}

func testProfile() profile.Profile {
	return profile.Profile{
		Academics:  profile.Academics{GPA: 3.9, GPAScale: 4.0},
		TestScores: profile.TestScores{SATMath: 760, SATVerbal: 720},
		Extracurriculars: []profile.Extracurricular{
			{Name: "Robotics club", Role: "captain", Years: 3},
		},
		Awards: []profile.Award{{Title: "Science fair finalist", Level: "regional"}},
		Essays: []profile.Essay{{Prompt: "Why us", Content: "draft one"}},
		Context: profile.Context{
			IntendedMajors: []string{"computer science"},
			Nationality:    "KR",
		},
	}
}

var baseScores = map[domain.Category]float64{
	domain.CategoryAcademics:        8,
	domain.CategoryTestScores:       7,
	domain.CategoryExtracurriculars: 6,
	domain.CategoryAwards:           5,
	domain.CategoryEssays:           6,
}

func newTestService(repo *fakeRepo, client ai.Client) *Service {
	return NewService(repo, client, time.Minute)
}

func TestAnalyzeFirstRunIsFull(t *testing.T) {
	repo := newFakeRepo()
	fake := &fakeAI{respond: respondScripted(baseScores)}
	svc := newTestService(repo, fake)

	out, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	require.NoError(t, err)

	assert.False(t, out.Cached)
	assert.False(t, out.Partial)
	assert.Equal(t, ai.ModeFull, fake.lastCall().Mode)
	assert.Equal(t, 6.4, out.Result.OverallScore)
	assert.Len(t, out.Result.Scores, len(domain.ScoredCategories))
	assert.Equal(t, 1, repo.puts)
}

func TestAnalyzeExactReplayIsCacheHit(t *testing.T) {
	repo := newFakeRepo()
	fake := &fakeAI{respond: respondScripted(baseScores)}
	svc := newTestService(repo, fake)

	first, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	require.NoError(t, err)

	second, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.False(t, second.Partial)
	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, 1, fake.callCount(), "replay must not invoke the analyzer")
	assert.Equal(t, 1, repo.puts, "replay must not rewrite the record")
}

func TestAnalyzePartialRecompute(t *testing.T) {
	repo := newFakeRepo()
	fake := &fakeAI{respond: respondScripted(baseScores)}
	svc := newTestService(repo, fake)

	p := testProfile()
	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: p,
	})
	require.NoError(t, err)

	// Only the essay changes; the analyzer now scores essays an 8.
	p.Essays[0].Content = "a far better draft"
	rescored := map[domain.Category]float64{domain.CategoryEssays: 8}
	fake.respond = respondScripted(rescored)

	out, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: p,
	})
	require.NoError(t, err)

	assert.True(t, out.Partial)
	assert.False(t, out.Cached)

	call := fake.lastCall()
	assert.Equal(t, ai.ModePartial, call.Mode)
	assert.Equal(t, []domain.Category{domain.CategoryEssays}, call.Dirty)
	assert.Equal(t, map[domain.Category]float64{
		domain.CategoryAcademics:        8,
		domain.CategoryTestScores:       7,
		domain.CategoryExtracurriculars: 6,
		domain.CategoryAwards:           5,
	}, call.ReferenceScores)

	assert.Equal(t, 8.0, out.Result.Scores[domain.CategoryEssays])
	assert.Equal(t, 8.0, out.Result.Scores[domain.CategoryAcademics])
	assert.Equal(t, 6.8, out.Result.OverallScore)
}

func TestAnalyzeForceRefreshBypassesCache(t *testing.T) {
	repo := newFakeRepo()
	fake := &fakeAI{respond: respondScripted(baseScores)}
	svc := newTestService(repo, fake)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	require.NoError(t, err)

	out, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(), ForceRefresh: true,
	})
	require.NoError(t, err)

	assert.False(t, out.Cached)
	assert.False(t, out.Partial)
	assert.Equal(t, 2, fake.callCount(), "force refresh must invoke the analyzer")
	assert.Equal(t, ai.ModeFull, fake.lastCall().Mode)
}

func TestAnalyzeContextOnlyChangeRefreshesNarrative(t *testing.T) {
	repo := newFakeRepo()
	fake := &fakeAI{respond: respondScripted(baseScores)}
	svc := newTestService(repo, fake)

	p := testProfile()
	first, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: p,
	})
	require.NoError(t, err)

	p.Context.FinancialNeedUSD = 40000
	fake.respond = func(req ai.ProfileRequest) (*ai.ProfileResponse, error) {
		return &ai.ProfileResponse{
			Scores: map[domain.Category]float64{},
			Narrative: domain.Narrative{
				Strengths:    []string{"new context considered"},
				Weaknesses:   []string{"-"},
				Improvements: []string{"-"},
			},
		}, nil
	}

	out, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: p,
	})
	require.NoError(t, err)

	assert.True(t, out.Partial)
	call := fake.lastCall()
	assert.Equal(t, ai.ModePartial, call.Mode)
	assert.Empty(t, call.Dirty)
	assert.Len(t, call.ReferenceScores, len(domain.ScoredCategories))

	assert.Equal(t, first.Result.Scores, out.Result.Scores, "scores must survive a context-only change")
	assert.Equal(t, []string{"new context considered"}, out.Result.Strengths)
}

func TestAnalyzeFailureLeavesStoreUntouched(t *testing.T) {
	repo := newFakeRepo()
	fake := &fakeAI{respond: respondScripted(baseScores)}
	svc := newTestService(repo, fake)

	p := testProfile()
	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: p,
	})
	require.NoError(t, err)
	before, err := repo.Get(context.Background(), "t1", "p1")
	require.NoError(t, err)

	p.Essays[0].Content = "changed"
	fake.respond = func(ai.ProfileRequest) (*ai.ProfileResponse, error) {
		return nil, errors.New("upstream exploded")
	}

	_, err = svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: p,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrUnavailable)

	after, err := repo.Get(context.Background(), "t1", "p1")
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed analysis must not touch the stored record")
}

func TestAnalyzeQuotaErrorPassesThrough(t *testing.T) {
	repo := newFakeRepo()
	fake := &fakeAI{respond: func(ai.ProfileRequest) (*ai.ProfileResponse, error) {
		return nil, ai.ErrQuotaExceeded
	}}
	svc := newTestService(repo, fake)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
	assert.NotErrorIs(t, err, ai.ErrUnavailable)
	assert.Empty(t, repo.records)
}

func TestAnalyzeRejectsWrongScoreSet(t *testing.T) {
	repo := newFakeRepo()
	fake := &fakeAI{respond: func(req ai.ProfileRequest) (*ai.ProfileResponse, error) {
		// Full mode requested, but only one score comes back.
		return &ai.ProfileResponse{
			Scores:    map[domain.Category]float64{domain.CategoryEssays: 8},
			Narrative: domain.Narrative{Strengths: []string{"x"}},
		}, nil
	}}
	svc := newTestService(repo, fake)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	assert.ErrorIs(t, err, ai.ErrMalformedOutput)
	assert.Empty(t, repo.records, "malformed output must never be persisted")
}

func TestAnalyzeRejectsOutOfRangeScore(t *testing.T) {
	bad := map[domain.Category]float64{
		domain.CategoryAcademics:        8,
		domain.CategoryTestScores:       7,
		domain.CategoryExtracurriculars: 6,
		domain.CategoryAwards:           5,
		domain.CategoryEssays:           14,
	}
	repo := newFakeRepo()
	fake := &fakeAI{respond: respondScripted(bad)}
	svc := newTestService(repo, fake)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	assert.ErrorIs(t, err, ai.ErrMalformedOutput)
}

func TestAnalyzeDegradedNarrative(t *testing.T) {
	emptyNarrative := func(req ai.ProfileRequest) (*ai.ProfileResponse, error) {
		resp, _ := respondScripted(baseScores)(req)
		resp.Narrative = domain.Narrative{}
		return resp, nil
	}

	t.Run("rejected by default", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, &fakeAI{respond: emptyNarrative})

		_, err := svc.Analyze(context.Background(), AnalyzeCommand{
			TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
		})
		assert.ErrorIs(t, err, ai.ErrMalformedOutput)
		assert.Empty(t, repo.records)
	})

	t.Run("placeholder when allowed, not cached", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, &fakeAI{respond: emptyNarrative})

		out, err := svc.Analyze(context.Background(), AnalyzeCommand{
			TenantID: "t1", ProfileID: "p1", Profile: testProfile(), AllowDegraded: true,
		})
		require.NoError(t, err)

		assert.True(t, out.Result.Degraded)
		assert.NotEmpty(t, out.Result.Strengths)
		assert.Equal(t, 6.4, out.Result.OverallScore, "scores are real even when narrative is degraded")
		assert.Empty(t, repo.records, "degraded results must not pin the cache")
	})
}

func TestAnalyzeAbandonedCallerNotPersisted(t *testing.T) {
	repo := newFakeRepo()
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakeAI{respond: func(req ai.ProfileRequest) (*ai.ProfileResponse, error) {
		// The caller goes away while the analyzer is in flight, but the
		// analyzer still returns a full response.
		cancel()
		return respondScripted(baseScores)(req)
	}}
	svc := newTestService(repo, fake)

	_, err := svc.Analyze(ctx, AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, repo.records, "a result nobody received must not appear in the cache")
}

func TestAnalyzeSerializesSameSubject(t *testing.T) {
	repo := newFakeRepo()
	fake := &fakeAI{respond: respondScripted(baseScores), delay: 30 * time.Millisecond}
	svc := newTestService(repo, fake)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Analyze(context.Background(), AnalyzeCommand{
				TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The second request waits on the per-subject lock, then sees the fresh
	// record and hits the cache instead of paying for a second call.
	assert.Equal(t, 1, fake.callCount())
	assert.Equal(t, 1, repo.puts)
}

// blockingAudit holds every Save until released, so tests can observe what
// completes while an audit write is still in flight.
type blockingAudit struct {
	release chan struct{}
	saved   chan *audit.Entry
}

func (a *blockingAudit) Save(ctx context.Context, e *audit.Entry) error {
	<-a.release
	a.saved <- e
	return nil
}

func (a *blockingAudit) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*audit.Entry, error) {
	return nil, nil
}

func TestAnalyzeAuditWriteDoesNotBlockCaller(t *testing.T) {
	repo := newFakeRepo()
	fake := &fakeAI{respond: respondScripted(baseScores)}
	svc := newTestService(repo, fake)
	au := &blockingAudit{release: make(chan struct{}), saved: make(chan *audit.Entry, 1)}
	svc.Audit = au

	out, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	require.NoError(t, err)
	assert.False(t, out.Cached)

	// The analysis returned while the audit write is still blocked, and the
	// subject lock is free: a second request completes without waiting on it.
	second, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	require.NoError(t, err)
	assert.True(t, second.Cached)

	select {
	case <-au.saved:
		t.Fatal("audit write finished before it was released")
	default:
	}

	close(au.release)
	entry := <-au.saved
	assert.Equal(t, "profile", entry.Kind)
	assert.Equal(t, "full", entry.Mode)
	assert.Equal(t, "t1", entry.TenantID)
}

func TestAnalyzePutFailureSurfaces(t *testing.T) {
	repo := newFakeRepo()
	repo.putErr = errors.New("disk full")
	fake := &fakeAI{respond: respondScripted(baseScores)}
	svc := newTestService(repo, fake)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", ProfileID: "p1", Profile: testProfile(),
	})
	assert.ErrorContains(t, err, "persist cache record")
}
