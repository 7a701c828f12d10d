package ranking

import (
	"testing"

	"rank-tracker/internal/api"
	"rank-tracker/internal/domain"
)

func flex(v int) api.FlexInt { return api.FlexInt{Value: v, Valid: true} }

func sample(rank, rating *int) domain.RankSample {
	var s domain.RankSample
	if rank != nil {
		s.Rank = domain.Some(*rank)
	}
	if rating != nil {
		s.Rating = domain.Some(*rating)
	}
	return s
}

func ip(v int) *int { return &v }

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  *api.RankedResponse
		want domain.RankSample
	}{
		{"nil payload", nil, domain.RankSample{}},
		{"empty payload", &api.RankedResponse{}, domain.RankSample{}},
		{
			"region preferred over global",
			&api.RankedResponse{RegionRank: flex(12), GlobalRank: flex(340), Rating: flex(1300)},
			sample(ip(12), ip(1300)),
		},
		{
			"global when region missing",
			&api.RankedResponse{GlobalRank: flex(340), Rating: flex(1300)},
			sample(ip(340), ip(1300)),
		},
		{
			"global when region is zero",
			&api.RankedResponse{RegionRank: flex(0), GlobalRank: flex(340), Rating: flex(1300)},
			sample(ip(340), ip(1300)),
		},
		{
			"no rank fields",
			&api.RankedResponse{Rating: flex(900)},
			sample(nil, ip(900)),
		},
		{
			"rank without rating",
			&api.RankedResponse{RegionRank: flex(5)},
			sample(ip(5), nil),
		},
		{
			"zero rating is absent",
			&api.RankedResponse{RegionRank: flex(5), Rating: flex(0)},
			sample(ip(5), nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.raw)
			if !got.Rank.Equal(tt.want.Rank) || !got.Rating.Equal(tt.want.Rating) {
				t.Errorf("Extract = {%s %s}, want {%s %s}", got.Rank, got.Rating, tt.want.Rank, tt.want.Rating)
			}
		})
	}
}

func TestExtractMissingRankFieldsAlwaysNone(t *testing.T) {
	for _, rating := range []api.FlexInt{{}, flex(1), flex(2500)} {
		got := Extract(&api.RankedResponse{Rating: rating, Name: "x", Tier: "Diamond"})
		if got.Rank.Valid {
			t.Errorf("rating %+v: rank = %s, want none", rating, got.Rank)
		}
	}
}

func TestShouldRecord(t *testing.T) {
	tests := []struct {
		name     string
		previous domain.RankSample
		current  domain.RankSample
		want     bool
	}{
		{"first data point", sample(nil, nil), sample(ip(5), ip(1200)), true},
		{"first data point without rank", sample(nil, nil), sample(nil, ip(1200)), true},
		{"identical refresh", sample(ip(3), ip(1200)), sample(ip(3), ip(1200)), false},
		{"rating only change", sample(ip(3), ip(1200)), sample(ip(3), ip(1250)), true},
		{"rank only change", sample(ip(3), ip(1200)), sample(ip(4), ip(1200)), true},
		{"rank lost", sample(ip(3), ip(1200)), sample(nil, ip(1200)), true},
		{"unranked unchanged", sample(nil, ip(800)), sample(nil, ip(800)), false},
		{"rating disappears", sample(ip(3), ip(1200)), sample(ip(3), nil), false},
		{"no data either side", sample(nil, nil), sample(ip(9), nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRecord(tt.previous, tt.current); got != tt.want {
				t.Errorf("ShouldRecord = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRecordFalseWithoutRating(t *testing.T) {
	previous := []domain.RankSample{
		sample(nil, nil),
		sample(ip(1), nil),
		sample(nil, ip(1000)),
		sample(ip(7), ip(1500)),
	}
	for _, p := range previous {
		if ShouldRecord(p, sample(ip(2), nil)) {
			t.Errorf("ShouldRecord(%+v, no rating) = true", p)
		}
	}
}

func TestDecide(t *testing.T) {
	prev := sample(ip(3), ip(1200))

	d := Decide(prev, &api.RankedResponse{RegionRank: flex(3), Rating: flex(1200)})
	if d.Changed || d.Record {
		t.Errorf("unchanged decision = %+v", d)
	}

	d = Decide(prev, &api.RankedResponse{RegionRank: flex(2), Rating: flex(1230)})
	if !d.Changed || !d.Record {
		t.Errorf("changed decision = %+v", d)
	}
	if d.Sample.Rank.Value != 2 || d.Sample.Rating.Value != 1230 {
		t.Errorf("sample = %+v", d.Sample)
	}

	d = Decide(prev, nil)
	if !d.Changed || d.Record {
		t.Errorf("empty payload decision = %+v, want changed but not recorded", d)
	}
}
