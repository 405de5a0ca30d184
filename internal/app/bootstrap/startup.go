// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/hrportal/internal/app/resources"
	"github.com/dalemusser/hrportal/internal/app/system/timeouts"
	"github.com/dalemusser/hrportal/internal/app/system/tracing"
	"github.com/dalemusser/waffle/config"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// tracerProvider is set by Startup when trace export is configured and
// flushed by Shutdown.
var tracerProvider *sdktrace.TracerProvider

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts configured from environment",
			zap.Int("overrides", n),
			zap.Duration("ping", cur.Ping),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long))
	}

	tp, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    appCfg.OTelEndpoint,
		Insecure:    appCfg.OTelInsecure,
		ServiceName: "hrportal",
	})
	if err != nil {
		logger.Error("tracing init failed", zap.Error(err))
		return err
	}
	if tp != nil {
		tracerProvider = tp
		logger.Info("exporting traces", zap.String("endpoint", appCfg.OTelEndpoint))
	}
	return nil
}
