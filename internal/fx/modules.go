package fx

import (
	"database/sql"

	"rank-tracker/internal/api"
	"rank-tracker/internal/auth"
	"rank-tracker/internal/cache"
	"rank-tracker/internal/config"
	"rank-tracker/internal/database"
	"rank-tracker/internal/db"
	"rank-tracker/internal/logger"
	"rank-tracker/internal/repository"
	"rank-tracker/internal/server"
	"rank-tracker/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideRankedFetcher(client *api.BrawlhallaClient) service.RankedFetcher {
	return client
}

func ProvideStatsSource(client *api.BrawlhallaClient) service.StatsSource {
	return client
}

func ProvideStatsValidator(client *api.BrawlhallaClient) service.StatsValidator {
	return client
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewTrackingRepository),
	fx.Provide(repository.NewUserRepository),
	// api client
	fx.Provide(api.NewBrawlhallaClient),
	fx.Provide(ProvideRankedFetcher),
	fx.Provide(ProvideStatsSource),
	fx.Provide(ProvideStatsValidator),
	// cache
	fx.Provide(cache.NewMemoryCache),
	fx.Provide(cache.New),
	fx.Provide(cache.NewJanitor),
	// auth
	fx.Provide(auth.NewSessionManager),
	fx.Provide(auth.NewSteamOpenID),
	fx.Provide(auth.NewProfileLookup),
	// svc
	fx.Provide(service.NewTrackingService),
	fx.Provide(service.NewStatsService),
	fx.Provide(service.NewUserService),
	// server
	fx.Provide(server.NewServer),
)
