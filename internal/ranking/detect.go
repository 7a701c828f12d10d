package ranking

import (
	"rank-tracker/internal/api"
	"rank-tracker/internal/domain"
)

// ShouldRecord reports whether current is a history-worthy observation
// relative to the last persisted state.
func ShouldRecord(previous, current domain.RankSample) bool {
	if !current.Rating.Valid {
		return false
	}
	// first ranked data point is always recorded
	if !previous.Rating.Valid {
		return true
	}
	return Changed(previous, current)
}

// Changed is plain inequality on both fields, absent being its own value.
func Changed(previous, current domain.RankSample) bool {
	return !current.Rank.Equal(previous.Rank) || !current.Rating.Equal(previous.Rating)
}

// Decision is the fully computed outcome of one fetch, built before any
// store write happens.
type Decision struct {
	Sample  domain.RankSample
	Changed bool
	Record  bool
}

func Decide(previous domain.RankSample, raw *api.RankedResponse) Decision {
	sample := Extract(raw)
	return Decision{
		Sample:  sample,
		Changed: Changed(previous, sample),
		Record:  ShouldRecord(previous, sample),
	}
}
