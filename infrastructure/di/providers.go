package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awssesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"

	"rinkhq-backend/application/acl"
	"rinkhq-backend/application/auth"
	"rinkhq-backend/application/idempotency"
	"rinkhq-backend/application/ports"
	"rinkhq-backend/infrastructure/config"
	"rinkhq-backend/infrastructure/email"
	"rinkhq-backend/infrastructure/messaging/eventbridge"
	"rinkhq-backend/infrastructure/observability"
	"rinkhq-backend/infrastructure/persistence/kvstore"
	"rinkhq-backend/infrastructure/persistence/repository"
	"rinkhq-backend/interfaces/http/rest"
	"rinkhq-backend/interfaces/http/rest/handlers"
	throttle "rinkhq-backend/pkg/auth"
	appErrors "rinkhq-backend/pkg/errors"
)

// Magic-link starts allowed per address per window.
const (
	magicLinkStartLimit  = 5
	magicLinkStartWindow = time.Minute
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideSESClient creates a SES v2 client
func ProvideSESClient(awsCfg aws.Config) *awssesv2.Client {
	return awssesv2.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the store-operation metrics sink. When metrics are
// disabled the sink is constructed with a nil client and drops everything.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("RinkHQ/%s", cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideStore creates the single-table key-value store
func ProvideStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) kvstore.Store {
	return kvstore.NewDynamoStore(client, cfg.DynamoDBTable, logger, metrics)
}

// ProvideLeagueRepository creates a league repository
func ProvideLeagueRepository(store kvstore.Store, logger *zap.Logger) ports.LeagueRepository {
	return repository.NewLeagueRepository(store, logger)
}

// ProvideACLRepository creates an ACL grant repository
func ProvideACLRepository(store kvstore.Store, logger *zap.Logger) ports.ACLRepository {
	return repository.NewACLRepository(store, logger)
}

// ProvideSeasonRepository creates a season repository
func ProvideSeasonRepository(store kvstore.Store, logger *zap.Logger) ports.SeasonRepository {
	return repository.NewSeasonRepository(store, logger)
}

// ProvideTeamRepository creates a team repository
func ProvideTeamRepository(store kvstore.Store, logger *zap.Logger) ports.TeamRepository {
	return repository.NewTeamRepository(store, logger)
}

// ProvideSessionRepository creates a session repository
func ProvideSessionRepository(store kvstore.Store, logger *zap.Logger) ports.SessionRepository {
	return repository.NewSessionRepository(store, logger)
}

// ProvideGameRepository creates a game repository
func ProvideGameRepository(store kvstore.Store, logger *zap.Logger) ports.GameRepository {
	return repository.NewGameRepository(store, logger)
}

// ProvidePlayerRepository creates a player repository
func ProvidePlayerRepository(store kvstore.Store, logger *zap.Logger) ports.PlayerRepository {
	return repository.NewPlayerRepository(store, logger)
}

// ProvideRosterRepository creates a roster repository
func ProvideRosterRepository(store kvstore.Store, logger *zap.Logger) ports.RosterRepository {
	return repository.NewRosterRepository(store, logger)
}

// ProvideGoalRepository creates a goal-event repository
func ProvideGoalRepository(store kvstore.Store, logger *zap.Logger) ports.GoalRepository {
	return repository.NewGoalRepository(store, logger)
}

// ProvideIdempotencyStore creates the idempotency record store
func ProvideIdempotencyStore(store kvstore.Store, logger *zap.Logger) ports.IdempotencyStore {
	return repository.NewIdempotencyRepository(store, logger)
}

// ProvideTokenStore creates the magic-link token store
func ProvideTokenStore(store kvstore.Store, logger *zap.Logger) ports.TokenStore {
	return repository.NewTokenRepository(store, logger)
}

// ProvideSessionStore creates the auth session store
func ProvideSessionStore(store kvstore.Store, logger *zap.Logger) ports.SessionStore {
	return repository.NewAuthSessionRepository(store, logger)
}

// ProvideEventBus creates an event bus. Development runs drop events instead
// of requiring an EventBridge bus.
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	if cfg.IsDevelopment() {
		return eventbridge.NopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMailer creates the magic-link mailer. Development runs log the link
// instead of sending email.
func ProvideMailer(client *awssesv2.Client, cfg *config.Config, logger *zap.Logger) ports.Mailer {
	if cfg.IsDevelopment() {
		return &email.LogMailer{Logger: logger}
	}
	return email.NewSESMailer(client, cfg.MailFromAddress, cfg.MailFromName, logger)
}

// ProvideAuthenticator creates the magic-link authenticator
func ProvideAuthenticator(tokens ports.TokenStore, sessions ports.SessionStore, mailer ports.Mailer, cfg *config.Config, logger *zap.Logger) *auth.Authenticator {
	return auth.NewAuthenticator(tokens, sessions, mailer, cfg.AppBaseURL, logger)
}

// ProvideGuard creates the idempotency guard
func ProvideGuard(records ports.IdempotencyStore, logger *zap.Logger) *idempotency.Guard {
	return idempotency.NewGuard(records, logger)
}

// ProvideResolver creates the ACL scope resolver
func ProvideResolver(acls ports.ACLRepository, seasons ports.SeasonRepository, sessions ports.SessionRepository, logger *zap.Logger) *acl.Resolver {
	return acl.NewResolver(acls, seasons, sessions, logger)
}

// ProvideLimiter creates the magic-link throttle
func ProvideLimiter(client *awsdynamodb.Client, cfg *config.Config) throttle.Limiter {
	if cfg.IsDevelopment() {
		return throttle.NewMemoryLimiter(magicLinkStartLimit, magicLinkStartWindow)
	}
	return throttle.NewDynamoLimiter(client, cfg.DynamoDBTable, magicLinkStartLimit, magicLinkStartWindow)
}

// ProvideErrorHandler creates the error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *appErrors.ErrorHandler {
	return appErrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideHandlers constructs the endpoint handlers
func ProvideHandlers(
	cfg *config.Config,
	authenticator *auth.Authenticator,
	limiter throttle.Limiter,
	leagues ports.LeagueRepository,
	seasons ports.SeasonRepository,
	teams ports.TeamRepository,
	sessions ports.SessionRepository,
	games ports.GameRepository,
	goals ports.GoalRepository,
	rosters ports.RosterRepository,
	players ports.PlayerRepository,
	bus ports.EventBus,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) rest.Handlers {
	secureCookies := !cfg.IsDevelopment()
	return rest.Handlers{
		Auth:    handlers.NewAuthHandler(authenticator, limiter, errorHandler, secureCookies, logger),
		League:  handlers.NewLeagueHandler(leagues, bus, errorHandler, logger),
		Season:  handlers.NewSeasonHandler(seasons, errorHandler, logger),
		Team:    handlers.NewTeamHandler(teams, errorHandler, logger),
		Session: handlers.NewSessionHandler(sessions, errorHandler, logger),
		Game:    handlers.NewGameHandler(games, bus, errorHandler, logger),
		Goal:    handlers.NewGoalHandler(goals, bus, errorHandler, logger),
		Roster:  handlers.NewRosterHandler(rosters, errorHandler, logger),
		Player:  handlers.NewPlayerHandler(players, errorHandler, logger),
	}
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	h rest.Handlers,
	authenticator *auth.Authenticator,
	resolver *acl.Resolver,
	guard *idempotency.Guard,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, h, authenticator, resolver, guard, errorHandler, logger)
}
