// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background workers, then tears down DB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := stopBackground(ctx); err != nil {
		logger.Warn("background workers did not stop in time", zap.Error(err))
	}
	if deps.DazleMongoClient != nil {
		logger.Info("disconnecting Dazle MongoDB client")
		if err := deps.DazleMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
