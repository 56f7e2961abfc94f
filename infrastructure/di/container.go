package di

import (
	"go.uber.org/zap"

	"rinkhq-backend/application/ports"
	"rinkhq-backend/infrastructure/config"
	"rinkhq-backend/infrastructure/observability"
	"rinkhq-backend/interfaces/http/rest"
)

// Container holds the wired application dependencies the entrypoints need.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	EventBus ports.EventBus
	Router   *rest.Router
}

// Close flushes buffered telemetry. Call on shutdown.
func (c *Container) Close() {
	if c.Metrics != nil {
		c.Metrics.Close()
	}
}
