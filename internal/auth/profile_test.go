package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rank-tracker/internal/config"

	"github.com/rs/zerolog"
)

func TestProfileLookupWithoutKey(t *testing.T) {
	p := NewProfileLookup(&config.Config{ExternalAPITimeout: time.Second}, zerolog.Nop())
	id := p.Resolve(context.Background(), testSteamID)
	if id.SteamID != testSteamID || id.DisplayName != testSteamID || id.Avatar != "" {
		t.Errorf("identity = %+v", id)
	}
}

func TestProfileLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ISteamUser/GetPlayerSummaries/v2/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "k" || r.URL.Query().Get("steamids") != testSteamID {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		io.WriteString(w, `{"response":{"players":[{"steamid":"`+testSteamID+`","personaname":"Rigel","avatarfull":"https://a/r.jpg"}]}}`)
	}))
	defer srv.Close()

	p := NewProfileLookup(&config.Config{SteamAPIKey: "k", ExternalAPITimeout: time.Second}, zerolog.Nop())
	p.baseURL = srv.URL

	id := p.Resolve(context.Background(), testSteamID)
	if id.DisplayName != "Rigel" || id.Avatar != "https://a/r.jpg" {
		t.Errorf("identity = %+v", id)
	}
}

func TestProfileLookupFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewProfileLookup(&config.Config{SteamAPIKey: "k", ExternalAPITimeout: time.Second}, zerolog.Nop())
	p.baseURL = srv.URL

	id := p.Resolve(context.Background(), testSteamID)
	if id.DisplayName != testSteamID {
		t.Errorf("identity = %+v", id)
	}
}
