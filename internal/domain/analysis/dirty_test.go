package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/admitlens/admitlens/internal/domain/profile"
)

func TestResolveDirtyFirstRun(t *testing.T) {
	fresh := CategoryFingerprints(profile.Profile{})

	d := ResolveDirty(fresh, nil)

	assert.ElementsMatch(t, ScoredCategories, d.Categories)
	assert.True(t, d.ContextChanged)
	assert.True(t, d.AllScored())
	assert.False(t, d.Empty())
}

func TestResolveDirtyUnchanged(t *testing.T) {
	fresh := CategoryFingerprints(profile.Profile{Academics: profile.Academics{GPA: 3.5}})
	stored := CategoryFingerprints(profile.Profile{Academics: profile.Academics{GPA: 3.5}})

	d := ResolveDirty(fresh, stored)

	assert.True(t, d.Empty())
}

func TestResolveDirtySingleCategory(t *testing.T) {
	p := profile.Profile{Essays: []profile.Essay{{Content: "v1"}}}
	stored := CategoryFingerprints(p)

	p.Essays[0].Content = "v2"
	d := ResolveDirty(CategoryFingerprints(p), stored)

	assert.Equal(t, []Category{CategoryEssays}, d.Categories)
	assert.False(t, d.ContextChanged)
	assert.True(t, d.Contains(CategoryEssays))
	assert.False(t, d.Contains(CategoryAcademics))
}

func TestResolveDirtyMissingStoredCategory(t *testing.T) {
	// A record written before a category existed: that category is dirty.
	fresh := CategoryFingerprints(profile.Profile{})
	stored := CategoryFingerprints(profile.Profile{})
	delete(stored, CategoryAwards)

	d := ResolveDirty(fresh, stored)

	assert.Equal(t, []Category{CategoryAwards}, d.Categories)
}

func TestResolveDirtyContextOnly(t *testing.T) {
	p := profile.Profile{Context: profile.Context{Nationality: "BR"}}
	stored := CategoryFingerprints(p)

	p.Context.FinancialNeedUSD = 25000
	d := ResolveDirty(CategoryFingerprints(p), stored)

	assert.Empty(t, d.Categories)
	assert.True(t, d.ContextChanged)
	assert.False(t, d.Empty())
	assert.False(t, d.AllScored())
}

func TestResolveChanged(t *testing.T) {
	assert.True(t, ResolveChanged("abc", ""))
	assert.True(t, ResolveChanged("abc", "def"))
	assert.False(t, ResolveChanged("abc", "abc"))
}
