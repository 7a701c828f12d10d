package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/config"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const SteamAPIBaseURL = "https://api.steampowered.com"

type playerSummaries struct {
	Response struct {
		Players []struct {
			SteamID     string `json:"steamid"`
			PersonaName string `json:"personaname"`
			AvatarFull  string `json:"avatarfull"`
		} `json:"players"`
	} `json:"response"`
}

// ProfileLookup resolves a Steam id to a persona name and avatar. Without an
// API key it returns the bare id.
type ProfileLookup struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewProfileLookup(cfg *config.Config, logger zerolog.Logger) *ProfileLookup {
	return &ProfileLookup{
		baseURL: SteamAPIBaseURL,
		apiKey:  cfg.SteamAPIKey,
		timeout: cfg.ExternalAPITimeout,
		client: &fasthttp.Client{
			ReadTimeout:  cfg.ExternalAPITimeout,
			WriteTimeout: cfg.ExternalAPITimeout,
		},
		logger: logger.With().Str("component", "steam_profile").Logger(),
	}
}

// Resolve never fails; lookup errors degrade to an identity without profile.
func (p *ProfileLookup) Resolve(ctx context.Context, steamID string) *Identity {
	id := &Identity{SteamID: steamID, DisplayName: steamID}
	if p.apiKey == "" {
		return id
	}

	name, avatar, err := p.fetch(ctx, steamID)
	if err != nil {
		p.logger.Warn().Err(err).Str("steam_id", steamID).Msg("steam profile lookup failed")
		return id
	}
	if name != "" {
		id.DisplayName = name
	}
	id.Avatar = avatar
	return id
}

func (p *ProfileLookup) fetch(ctx context.Context, steamID string) (string, string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	q := url.Values{}
	q.Set("key", p.apiKey)
	q.Set("steamids", steamID)
	req.SetRequestURI(p.baseURL + "/ISteamUser/GetPlayerSummaries/v2/?" + q.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := p.client.DoDeadline(req, resp, deadline); err != nil {
		return "", "", fmt.Errorf("player summaries: %v: %w", err, apperror.ErrUnavailable)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", "", fmt.Errorf("player summaries status %d: %w", resp.StatusCode(), apperror.ErrUnavailable)
	}

	var summaries playerSummaries
	if err := json.Unmarshal(resp.Body(), &summaries); err != nil {
		return "", "", fmt.Errorf("decode player summaries: %w", err)
	}
	for _, pl := range summaries.Response.Players {
		if pl.SteamID == steamID {
			return pl.PersonaName, pl.AvatarFull, nil
		}
	}
	return "", "", fmt.Errorf("player summaries: %s: %w", steamID, apperror.ErrNotFound)
}
