// Package cleanup provides the periodic maintenance job: it removes expired
// login sessions and prunes closed flags past their retention window. The
// job is idempotent and designed for daily batch execution.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nabil/meshbari/internal/metrics"
	"github.com/nabil/meshbari/internal/repository"
)

// DefaultFlagRetentionDays is how long closed flags are kept before the
// job prunes them.
const DefaultFlagRetentionDays = 90

// CleanupJob removes expired sessions and prunes closed flags.
type CleanupJob struct {
	sessions          repository.SessionRepository
	flags             repository.FlagRepository
	collector         metrics.MetricsCollector
	logger            *slog.Logger
	FlagRetentionDays int
}

// NewCleanupJob creates a cleanup job with the default retention.
func NewCleanupJob(sessions repository.SessionRepository, flags repository.FlagRepository, collector metrics.MetricsCollector, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions:          sessions,
		flags:             flags,
		collector:         collector,
		logger:            logger,
		FlagRetentionDays: DefaultFlagRetentionDays,
	}
}

// Run executes one cleanup pass. Nothing to delete is not an error.
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	purged, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("failed to purge expired sessions",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	if j.collector != nil {
		j.collector.RecordSessionsPurged(purged)
	}

	cutoff := time.Now().AddDate(0, 0, -j.FlagRetentionDays)
	pruned, err := j.flags.DeleteResolvedBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("failed to prune closed flags",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.FlagRetentionDays),
		)
		return fmt.Errorf("failed to prune closed flags: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("cleanup job finished",
		slog.Int64("sessions_purged", purged),
		slog.Int64("flags_pruned", pruned),
		slog.Int("retention_days", j.FlagRetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
