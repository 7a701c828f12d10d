package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/config"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	SteamOpenIDEndpoint = "https://steamcommunity.com/openid/login"
	openIDNamespace     = "http://specs.openid.net/auth/2.0"
	openIDIdentifier    = "http://specs.openid.net/auth/2.0/identifier_select"
	SteamReturnPath     = "/auth/steam/return"
)

var claimedIDPattern = regexp.MustCompile(`^https?://steamcommunity\.com/openid/id/(\d{17})$`)

// SteamOpenID runs the OpenID 2.0 handshake against Steam.
type SteamOpenID struct {
	endpoint string
	realm    string
	returnTo string
	timeout  time.Duration
	client   *fasthttp.Client
	logger   zerolog.Logger
}

func NewSteamOpenID(cfg *config.Config, logger zerolog.Logger) *SteamOpenID {
	return &SteamOpenID{
		endpoint: SteamOpenIDEndpoint,
		realm:    cfg.BackendURL,
		returnTo: cfg.BackendURL + SteamReturnPath,
		timeout:  cfg.ExternalAPITimeout,
		client: &fasthttp.Client{
			ReadTimeout:  cfg.ExternalAPITimeout,
			WriteTimeout: cfg.ExternalAPITimeout,
		},
		logger: logger.With().Str("component", "steam_openid").Logger(),
	}
}

// LoginURL is where the browser is sent to sign in.
func (s *SteamOpenID) LoginURL() string {
	q := url.Values{}
	q.Set("openid.ns", openIDNamespace)
	q.Set("openid.mode", "checkid_setup")
	q.Set("openid.return_to", s.returnTo)
	q.Set("openid.realm", s.realm)
	q.Set("openid.identity", openIDIdentifier)
	q.Set("openid.claimed_id", openIDIdentifier)
	return s.endpoint + "?" + q.Encode()
}

// Verify checks the assertion Steam redirected back with and returns the
// 64-bit Steam id.
func (s *SteamOpenID) Verify(ctx context.Context, params url.Values) (string, error) {
	if params.Get("openid.mode") != "id_res" {
		return "", fmt.Errorf("openid mode %q: %w", params.Get("openid.mode"), apperror.ErrUnauthorized)
	}
	if !strings.HasPrefix(params.Get("openid.return_to"), s.returnTo) {
		return "", fmt.Errorf("openid return_to mismatch: %w", apperror.ErrUnauthorized)
	}

	m := claimedIDPattern.FindStringSubmatch(params.Get("openid.claimed_id"))
	if m == nil {
		return "", fmt.Errorf("openid claimed_id malformed: %w", apperror.ErrUnauthorized)
	}

	valid, err := s.checkAuthentication(ctx, params)
	if err != nil {
		return "", err
	}
	if !valid {
		return "", fmt.Errorf("openid assertion rejected: %w", apperror.ErrUnauthorized)
	}

	s.logger.Debug().Str("steam_id", m[1]).Msg("openid assertion verified")
	return m[1], nil
}

func (s *SteamOpenID) checkAuthentication(ctx context.Context, params url.Values) (bool, error) {
	form := url.Values{}
	for k, v := range params {
		if strings.HasPrefix(k, "openid.") {
			form[k] = v
		}
	}
	form.Set("openid.mode", "check_authentication")

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(form.Encode())

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return false, fmt.Errorf("steam check_authentication: %v: %w", err, apperror.ErrTimeout)
		}
		return false, fmt.Errorf("steam check_authentication: %v: %w", err, apperror.ErrUnavailable)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return false, fmt.Errorf("steam check_authentication status %d: %w", resp.StatusCode(), apperror.ErrUnavailable)
	}

	for _, line := range strings.Split(string(resp.Body()), "\n") {
		if strings.TrimSpace(line) == "is_valid:true" {
			return true, nil
		}
	}
	return false, nil
}
