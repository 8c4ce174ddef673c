package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/campusshare/api/model"
)

// SweepOrphanBlobs retries deletion of storage objects whose removal failed
// during a note or assignment delete. Runs nightly.
func (m *CronManager) SweepOrphanBlobs() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	jobName := "sweep_orphan_blobs"

	var orphans []model.OrphanBlob
	if err := m.db.Order("created_at ASC").Find(&orphans).Error; err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to query orphan blobs: %w", err))
		return
	}

	if len(orphans) == 0 {
		m.logJobComplete(jobName, "No orphan blobs to sweep")
		return
	}

	deleted := 0
	failed := 0

	for _, orphan := range orphans {
		if err := m.blobs.Delete(ctx, orphan.Key); err != nil {
			log.Printf("[CRON] Failed to delete orphan blob %s: %v", orphan.Key, err)
			failed++
			continue
		}

		if err := m.db.Delete(&model.OrphanBlob{}, orphan.ID).Error; err != nil {
			log.Printf("[CRON] Failed to clear orphan record %d: %v", orphan.ID, err)
			failed++
			continue
		}

		deleted++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Swept %d orphan blobs, deleted %d, failed %d", len(orphans), deleted, failed))
}

// CleanupCronLogs removes cron job logs older than 30 days. Runs weekly.
func (m *CronManager) CleanupCronLogs() {
	jobName := "cleanup_cron_logs"

	cutoff := time.Now().AddDate(0, 0, -30)

	result := m.db.Where("created_at < ?", cutoff).Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete old cron logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d old cron logs", result.RowsAffected))
}
