package database

import (
	"gorm.io/gorm/clause"

	"github.com/campusshare/api/model"
)

// RecordOrphanBlob queues a blob key for the nightly sweep job. Recording
// the same key twice is a no-op.
func (s *GORMStore) RecordOrphanBlob(key, reason string) error {
	orphan := model.OrphanBlob{Key: key, Reason: reason}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&orphan).Error
}

// OrphanBlobs returns all queued orphan keys, oldest first.
func (s *GORMStore) OrphanBlobs() ([]model.OrphanBlob, error) {
	var orphans []model.OrphanBlob
	err := s.db.Order("created_at ASC").Find(&orphans).Error
	return orphans, err
}

// ClearOrphanBlob removes a swept orphan record.
func (s *GORMStore) ClearOrphanBlob(id uint) error {
	return s.db.Delete(&model.OrphanBlob{}, id).Error
}
