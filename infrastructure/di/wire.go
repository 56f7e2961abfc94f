//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"rinkhq-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideSESClient,
	ProvideMetrics,
	ProvideStore,
	ProvideLeagueRepository,
	ProvideACLRepository,
	ProvideSeasonRepository,
	ProvideTeamRepository,
	ProvideSessionRepository,
	ProvideGameRepository,
	ProvidePlayerRepository,
	ProvideRosterRepository,
	ProvideGoalRepository,
	ProvideIdempotencyStore,
	ProvideTokenStore,
	ProvideSessionStore,
	ProvideEventBus,
	ProvideMailer,
	ProvideAuthenticator,
	ProvideGuard,
	ProvideResolver,
	ProvideLimiter,
	ProvideErrorHandler,
	ProvideHandlers,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
