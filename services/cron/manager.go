package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/services"
	"gorm.io/gorm"
)

// CronManager manages all scheduled background jobs.
type CronManager struct {
	cron        *cron.Cron
	db          *gorm.DB
	resets      *services.PasswordResetService
	experiences *services.ExperienceService
}

// NewCronManager creates a new cron manager.
func NewCronManager(db *gorm.DB, resets *services.PasswordResetService, experiences *services.ExperienceService) *CronManager {
	// Seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:        c,
		db:          db,
		resets:      resets,
		experiences: experiences,
	}
}

// Start registers all jobs and starts the scheduler.
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Every 15 minutes: clear expired password reset tokens
	_, err := m.cron.AddFunc("0 */15 * * * *", func() {
		m.logJobStart("sweep_reset_tokens")
		m.SweepResetTokens()
	})
	if err != nil {
		return err
	}

	// Every hour: recompute and cache platform statistics
	_, err = m.cron.AddFunc("0 0 * * * *", func() {
		m.logJobStart("warm_platform_stats")
		m.WarmPlatformStats()
	})
	if err != nil {
		return err
	}

	// Daily at 2 AM: cleanup old job logs
	_, err = m.cron.AddFunc("0 0 2 * * *", func() {
		m.logJobStart("cleanup_job_logs")
		m.CleanupJobLogs()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

func (m *CronManager) logJobStart(jobName string) {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	cronLog := model.CronJobLog{
		JobName:   jobName,
		Status:    "started",
		StartedAt: time.Now(),
	}
	m.db.Create(&cronLog)
}

func (m *CronManager) logJobComplete(jobName string, message string) {
	log.Printf("[CRON] Completed job: %s - %s", jobName, message)

	m.db.Model(&model.CronJobLog{}).
		Where("job_name = ? AND status = ?", jobName, "started").
		Order("started_at DESC").
		Limit(1).
		Updates(map[string]interface{}{
			"status":       "completed",
			"completed_at": time.Now(),
			"message":      message,
		})
}

func (m *CronManager) logJobError(jobName string, err error) {
	log.Printf("[CRON] Error in job: %s - %v", jobName, err)

	m.db.Model(&model.CronJobLog{}).
		Where("job_name = ? AND status = ?", jobName, "started").
		Order("started_at DESC").
		Limit(1).
		Updates(map[string]interface{}{
			"status":       "failed",
			"completed_at": time.Now(),
			"error_msg":    err.Error(),
		})
}
