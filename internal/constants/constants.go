package constants

import "time"

const (
	StatsCacheTTL      = 5 * time.Minute
	CacheJanitorPeriod = 1 * time.Minute
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// RecentHistoryLimit is the per-player read window for list views.
	RecentHistoryLimit = 10
	RefreshAllLimit    = 4
)

const (
	SessionCookieName = "rt_session"
	SessionTTL        = 24 * time.Hour
)
