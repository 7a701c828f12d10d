package auth

import (
	"fmt"
	"net/http"
	"time"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/config"
	"rank-tracker/internal/constants"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	DisplayName string `json:"name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates HS256 session tokens stored in a cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(cfg *config.Config) (*SessionManager, error) {
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required but was empty")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = constants.SessionTTL
	}
	return &SessionManager{
		secret: []byte(cfg.SessionSecret),
		ttl:    ttl,
		secure: cfg.IsProduction(),
		now:    time.Now,
	}, nil
}

func (m *SessionManager) Issue(id *Identity) (string, error) {
	now := m.now()
	claims := &Claims{
		DisplayName: id.DisplayName,
		Avatar:      id.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.SteamID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *SessionManager) Parse(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid session: %v: %w", err, apperror.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid session claims: %w", apperror.ErrUnauthorized)
	}

	return &Identity{
		SteamID:     claims.Subject,
		DisplayName: claims.DisplayName,
		Avatar:      claims.Avatar,
	}, nil
}

// FromRequest reads the session cookie.
func (m *SessionManager) FromRequest(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(constants.SessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("no session cookie: %w", apperror.ErrUnauthorized)
	}
	return m.Parse(cookie.Value)
}

func (m *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite(),
	})
}

func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite(),
	})
}

// Cross-site frontends need SameSite=None, which browsers only accept with Secure.
func (m *SessionManager) sameSite() http.SameSite {
	if m.secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
