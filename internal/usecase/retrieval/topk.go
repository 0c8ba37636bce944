package retrieval

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/futig/knowledge-backend/internal/entity"
)

// ParseTopK reads a requested top-K from its raw JSON value. Anything other
// than a positive integral number yields nil. Huge values saturate so that
// they still clamp to the maximum downstream.
func ParseTopK(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || f < 1 || f != math.Trunc(f) {
		return nil
	}

	k := int(min(f, math.MaxInt32))
	return &k
}

// EffectiveTopK resolves the number of hits to fetch. The result always lies in [1, MaxTopK].
func EffectiveTopK(requested *int, settings entity.AdminSettings) int {
	maxK := max(settings.MaxTopK, 1)
	k := settings.DefaultTopK
	if requested != nil && *requested >= 1 {
		k = *requested
	}
	return min(max(k, 1), maxK)
}
