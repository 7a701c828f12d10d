// Package ranking turns provider payloads into rank samples and decides which
// samples belong in a player's history. Everything here is pure.
package ranking

import (
	"rank-tracker/internal/api"
	"rank-tracker/internal/domain"
)

// Extract normalizes a ranked payload. Region rank wins over global rank.
// The provider reports 0 for "not placed", so zero counts as absent.
func Extract(raw *api.RankedResponse) domain.RankSample {
	if raw == nil {
		return domain.RankSample{}
	}

	sample := domain.RankSample{Rating: optional(raw.Rating)}
	switch {
	case present(raw.RegionRank):
		sample.Rank = optional(raw.RegionRank)
	case present(raw.GlobalRank):
		sample.Rank = optional(raw.GlobalRank)
	}
	return sample
}

func present(f api.FlexInt) bool {
	return f.Valid && f.Value != 0
}

func optional(f api.FlexInt) domain.OptInt {
	if !present(f) {
		return domain.None()
	}
	return domain.Some(f.Value)
}
