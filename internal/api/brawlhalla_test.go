package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/config"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *BrawlhallaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewBrawlhallaClient(&config.Config{
		StatsBaseURL:       srv.URL,
		StatsAPIKey:        "test-key",
		ExternalAPITimeout: timeout,
	}, zerolog.Nop())
}

func TestGetRanked(t *testing.T) {
	var gotPath, gotKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("X-RateLimit-Remaining", "41")
		w.Write([]byte(`{"name":"Bodvar","region_rank":12,"global_rank":"340","rating":1300,"tier":"Gold 3"}`))
	}, time.Second)

	resp, err := client.GetRanked(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetRanked: %v", err)
	}
	if gotPath != "/player/42/ranked" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api_key = %q", gotKey)
	}
	if !resp.RegionRank.Valid || resp.RegionRank.Value != 12 {
		t.Errorf("region_rank = %+v", resp.RegionRank)
	}
	if !resp.GlobalRank.Valid || resp.GlobalRank.Value != 340 {
		t.Errorf("global_rank from string = %+v", resp.GlobalRank)
	}
	if !resp.Rating.Valid || resp.Rating.Value != 1300 {
		t.Errorf("rating = %+v", resp.Rating)
	}
	if client.GetRateLimitInfo().Remaining != 41 {
		t.Errorf("rate limit remaining = %d", client.GetRateLimitInfo().Remaining)
	}
}

func TestGetRankedEmptyBody(t *testing.T) {
	for _, body := range []string{"", "   ", "null", "[]", " [ ] ", "{}"} {
		t.Run(fmt.Sprintf("%q", body), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				io.WriteString(w, body)
			}, time.Second)

			resp, err := client.GetRanked(context.Background(), "7")
			if err != nil {
				t.Fatalf("GetRanked: %v", err)
			}
			if resp.Rating.Valid || resp.RegionRank.Valid || resp.GlobalRank.Valid {
				t.Errorf("expected all fields absent, got %+v", resp)
			}
		})
	}
}

func TestGetRankedFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			want: apperror.ErrNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: apperror.ErrUnavailable,
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>"))
			},
			want: apperror.ErrUnavailable,
		},
		{
			name: "truncated array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("[1,"))
			},
			want: apperror.ErrUnavailable,
		},
		{
			name: "slow upstream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
				w.Write([]byte(`{}`))
			},
			want: apperror.ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler, 50*time.Millisecond)
			_, err := client.GetRanked(context.Background(), "1")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUnreachableProviderIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client := NewBrawlhallaClient(&config.Config{
		StatsBaseURL:       addr,
		StatsAPIKey:        "k",
		ExternalAPITimeout: time.Second,
	}, zerolog.Nop())

	_, err := client.GetStatsRaw(context.Background(), "1")
	if !apperror.IsUpstream(err) {
		t.Fatalf("err = %v, want upstream error", err)
	}
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, time.Second)

	for i := 0; i < 11; i++ {
		client.GetRankedRaw(context.Background(), "1")
	}
	before := calls.Load()

	_, err := client.GetRankedRaw(context.Background(), "1")
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if after := calls.Load(); after != before {
		t.Errorf("open circuit should not reach the provider, calls %d -> %d", before, after)
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, time.Second)

	for i := 0; i < 15; i++ {
		_, err := client.GetStatsRaw(context.Background(), "missing")
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Fatalf("call %d: err = %v, want ErrNotFound", i, err)
		}
	}
}

func TestGetRankingsPath(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	}, time.Second)

	if _, err := client.GetRankingsRaw(context.Background(), "1v1", "us-e", 2); err != nil {
		t.Fatalf("GetRankingsRaw: %v", err)
	}
	if gotPath != "/rankings/1v1/us-e/2" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in    string
		want  int
		valid bool
	}{
		{`12`, 12, true},
		{`"12"`, 12, true},
		{`1250.0`, 1250, true},
		{`null`, 0, false},
		{`"n/a"`, 0, false},
		{`""`, 0, false},
		{`true`, 0, false},
	}

	for _, tt := range tests {
		var f FlexInt
		if err := json.Unmarshal([]byte(tt.in), &f); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if f.Valid != tt.valid || f.Value != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want {%d %v}", tt.in, f, tt.want, tt.valid)
		}
	}
}
