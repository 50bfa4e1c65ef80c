//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"flowengine/application/dispatch"
	"flowengine/application/queries/handlers"
	"flowengine/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogging,
	ProvideLogger,
	ProvideTracerProvider,
	ProvideCollector,
	ProvideAWSConfig,
	ProvideEventBridgeClient,
	ProvideEventPublisher,
	ProvideClock,
	ProvideComplexityAnalyzer,
	handlers.NewAnalyzeComplexityHandler,
	handlers.NewAnalyzeProgressHandler,
	handlers.NewDetectBottlenecksHandler,
	handlers.NewFindCriticalPathHandler,
	ProvideQueryBus,
	dispatch.NewDispatcher,
	ProvideWorkerPool,
	ProvideJWTValidator,
	ProvideWebSocketServer,
	ProvideAnalyzeHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup function
// stops the workers and flushes telemetry.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
