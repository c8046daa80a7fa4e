package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartPinger checks the connection every interval until ctx is done.
// report, if not nil, receives the outcome of each check.
func StartPinger(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
	report func(up bool),
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		up := true
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, interval)
				err := db.PingContext(pingCtx)
				cancel()

				switch {
				case err != nil:
					log.Error("database ping failed", zap.Error(err))
					up = false
				case !up:
					log.Info("database connection restored")
					up = true
				}
				if report != nil {
					report(err == nil)
				}
			}
		}
	}()
}
