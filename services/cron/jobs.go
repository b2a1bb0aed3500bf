package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/roohithbala/placement/model"
)

// SweepResetTokens clears password reset tokens whose expiry has passed.
// Runs every 15 minutes.
func (m *CronManager) SweepResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "sweep_reset_tokens"

	cleared, err := m.resets.SweepExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to sweep reset tokens: %w", err))
		return
	}

	if cleared == 0 {
		m.logJobComplete(jobName, "No expired tokens")
		return
	}
	m.logJobComplete(jobName, fmt.Sprintf("Cleared %d expired tokens", cleared))
}

// WarmPlatformStats recomputes the landing-page statistics and pushes
// them into the cache. Runs hourly.
func (m *CronManager) WarmPlatformStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "warm_platform_stats"

	stats, err := m.experiences.WarmPlatformStatsCache(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to warm stats cache: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Cached stats for %d experiences across %d companies",
		stats.TotalExperiences, stats.TotalCompanies))
}

// CleanupJobLogs removes job log rows older than 30 days. Runs daily.
func (m *CronManager) CleanupJobLogs() {
	jobName := "cleanup_job_logs"

	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.Unscoped().
		Where("started_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete old job logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d old job logs", result.RowsAffected))
}
