package api

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// FlexInt decodes a provider integer that may arrive as a number, a numeric
// string or null. Anything unparseable decodes as absent instead of failing
// the whole payload.
type FlexInt struct {
	Value int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(s)
	}
	if n, err := strconv.Atoi(string(b)); err == nil {
		*f = FlexInt{Value: n, Valid: true}
		return nil
	}
	if v, err := strconv.ParseFloat(string(b), 64); err == nil {
		*f = FlexInt{Value: int(v), Valid: true}
	}
	return nil
}

// RankedResponse is the subset of /player/{id}/ranked the tracker reads.
// Every field is optional; unranked players omit most of them.
type RankedResponse struct {
	Name         string  `json:"name"`
	BrawlhallaID FlexInt `json:"brawlhalla_id"`
	Rating       FlexInt `json:"rating"`
	PeakRating   FlexInt `json:"peak_rating"`
	Tier         string  `json:"tier"`
	Region       string  `json:"region"`
	RegionRank   FlexInt `json:"region_rank"`
	GlobalRank   FlexInt `json:"global_rank"`
	Wins         FlexInt `json:"wins"`
	Games        FlexInt `json:"games"`
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`
}
