package di

import (
	"go.uber.org/zap"

	"flowengine/application/dispatch"
	"flowengine/application/ports"
	"flowengine/application/queries/bus"
	"flowengine/application/worker"
	"flowengine/infrastructure/config"
	"flowengine/infrastructure/observability"
	"flowengine/interfaces/http/rest"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logging    *Logging
	Tracing    *observability.TracerProvider
	Collector  *observability.Collector
	Publisher  ports.EventPublisher
	QueryBus   *bus.QueryBus
	Dispatcher *dispatch.Dispatcher
	Pool       *worker.Pool
	Router     *rest.Router
}

// Logger returns the process logger
func (c *Container) Logger() *zap.Logger {
	return c.Logging.Logger
}
