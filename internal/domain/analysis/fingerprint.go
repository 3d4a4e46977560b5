package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/admitlens/admitlens/internal/domain/profile"
)

// Fingerprint returns a stable hex digest of v. The value is canonicalized
// before hashing: it is serialized, decoded back into generic form and
// re-serialized, which sorts all object keys. Two semantically equal inputs
// therefore hash identically regardless of key order, and absent sub-fields
// collapse to their empty JSON representation.
func Fingerprint(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		// Inputs are plain data structs/maps; marshal cannot fail for them.
		// Hash the error text so the caller still gets a deterministic value.
		raw = []byte(err.Error())
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err == nil {
		if canon, err := json.Marshal(generic); err == nil {
			raw = canon
		}
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// CategoryFingerprints computes the fingerprint of every category slice of p,
// context included.
func CategoryFingerprints(p profile.Profile) map[Category]string {
	fps := make(map[Category]string, len(AllCategories))
	for _, c := range AllCategories {
		fps[c] = Fingerprint(c.Slice(p))
	}
	return fps
}
