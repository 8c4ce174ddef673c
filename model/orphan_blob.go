package model

import "time"

// OrphanBlob records a blob-store key whose best-effort deletion failed
// during a note/assignment mutation. Entity operations never block on blob
// cleanup; failed deletes land here and a nightly cron job retries them.
type OrphanBlob struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"type:varchar(512);not null;uniqueIndex" json:"key"`
	Reason    string    `gorm:"type:text" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for OrphanBlob
func (OrphanBlob) TableName() string {
	return "orphan_blobs"
}
