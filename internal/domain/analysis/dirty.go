package analysis

// DirtySet is the outcome of comparing fresh fingerprints against a stored
// record: the scored categories whose input changed, plus whether the
// non-scored context slice changed.
type DirtySet struct {
	Categories     []Category
	ContextChanged bool
}

// Empty reports a full cache hit: nothing relevant changed.
func (d DirtySet) Empty() bool {
	return len(d.Categories) == 0 && !d.ContextChanged
}

// AllScored reports whether every scored category is dirty, in which case a
// partial recompute would save nothing over a full one.
func (d DirtySet) AllScored() bool {
	return len(d.Categories) == len(ScoredCategories)
}

// Contains reports whether c is in the dirty scored set.
func (d DirtySet) Contains(c Category) bool {
	for _, dc := range d.Categories {
		if dc == c {
			return true
		}
	}
	return false
}

// ResolveDirty compares fresh per-category fingerprints against the ones a
// stored record was computed from. A nil stored map means no record exists
// yet: everything is dirty. A category missing from the stored map (a
// category introduced after the record was written) is dirty as well.
// Dirty categories come back in ScoredCategories order.
func ResolveDirty(fresh, stored map[Category]string) DirtySet {
	var d DirtySet
	if stored == nil {
		d.Categories = append(d.Categories, ScoredCategories...)
		d.ContextChanged = true
		return d
	}
	for _, c := range ScoredCategories {
		prev, ok := stored[c]
		if !ok || prev != fresh[c] {
			d.Categories = append(d.Categories, c)
		}
	}
	if prev, ok := stored[CategoryContext]; !ok || prev != fresh[CategoryContext] {
		d.ContextChanged = true
	}
	return d
}

// ResolveChanged is the coarse-grained variant: a single fingerprint over the
// whole relevant input slice. Absent stored fingerprint means changed.
func ResolveChanged(fresh, stored string) bool {
	return stored == "" || fresh != stored
}
