package domain

import (
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// OptInt is an integer that may be absent. The zero value is absent.
type OptInt struct {
	Value int
	Valid bool
}

func Some(v int) OptInt { return OptInt{Value: v, Valid: true} }

func None() OptInt { return OptInt{} }

// Equal treats absent as a value distinct from every integer.
func (o OptInt) Equal(other OptInt) bool {
	if o.Valid != other.Valid {
		return false
	}
	return !o.Valid || o.Value == other.Value
}

func (o OptInt) Ptr() *int {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

func (o OptInt) String() string {
	if !o.Valid {
		return "none"
	}
	return strconv.Itoa(o.Value)
}

func (o OptInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *OptInt) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = None()
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// RankSample is one normalized observation from the stats provider.
type RankSample struct {
	Rank   OptInt
	Rating OptInt
}

// HasRankedData reports whether the sample may become a history entry.
func (s RankSample) HasRankedData() bool {
	return s.Rating.Valid
}

type User struct {
	SteamID      string
	DisplayName  string
	Avatar       string
	BrawlhallaID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TrackedPlayer struct {
	ID            string
	OwnerID       string
	ExternalID    string
	DisplayName   string
	CurrentRank   OptInt
	CurrentRating OptInt
	LastChecked   time.Time
	CreatedAt     time.Time
	History       []RankHistoryEntry
}

// RankState is the persisted rank/rating pair the change detector compares against.
func (p *TrackedPlayer) RankState() RankSample {
	return RankSample{Rank: p.CurrentRank, Rating: p.CurrentRating}
}

type RankHistoryEntry struct {
	ID              string
	TrackedPlayerID string
	Rank            OptInt
	Rating          int
	RecordedAt      time.Time
}
