package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// PendingUpload is a staged video upload for a segment of a session that has
// not been completed yet. Session rows are only created once all four
// segments are staged, so an interrupted upload flow never leaves a partial
// session behind.
type PendingUpload struct {
	ID          uint   `gorm:"primarykey"`
	RunnerID    uint   `gorm:"not null;uniqueIndex:idx_pending_runner_segment"`
	Segment     string `gorm:"not null;uniqueIndex:idx_pending_runner_segment"`
	FileName    string
	StoragePath string
	FileSize    int64
	UploadedAt  time.Time
}

// StageUpload records an uploaded segment video for a runner. Re-uploading
// the same segment replaces the previous staged row and returns the old
// storage path so the caller can remove the orphaned file.
func (c *Client) StageUpload(ctx context.Context, upload PendingUpload) (previousPath string, err error) {
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing PendingUpload
		err := tx.Where("runner_id = ? AND segment = ?", upload.RunnerID, upload.Segment).First(&existing).Error
		switch {
		case err == nil:
			previousPath = existing.StoragePath
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(&upload).Error
	})
	if err != nil {
		log.Error("failed to stage upload", "runner", upload.RunnerID, "segment", upload.Segment, "error", err)
		return "", err
	}
	return previousPath, nil
}

// StagedUploads returns the staged uploads for a runner, one per segment.
func (c *Client) StagedUploads(ctx context.Context, runnerID uint) ([]PendingUpload, error) {
	var uploads []PendingUpload
	if err := c.db.WithContext(ctx).
		Where("runner_id = ?", runnerID).
		Order("segment").
		Find(&uploads).Error; err != nil {
		log.Error("failed to list staged uploads", "error", err)
		return nil, err
	}
	return uploads, nil
}

// DeleteStagedUploads drops all staged uploads for a runner and returns the
// storage paths of the removed files.
func (c *Client) DeleteStagedUploads(ctx context.Context, runnerID uint) ([]string, error) {
	uploads, err := c.StagedUploads(ctx, runnerID)
	if err != nil {
		return nil, err
	}
	if err := c.db.WithContext(ctx).Where("runner_id = ?", runnerID).Delete(&PendingUpload{}).Error; err != nil {
		log.Error("failed to delete staged uploads", "error", err)
		return nil, err
	}
	paths := make([]string, 0, len(uploads))
	for _, u := range uploads {
		paths = append(paths, u.StoragePath)
	}
	return paths, nil
}

// StaleStagedUploads returns staged uploads older than the cutoff and
// removes their rows. The caller is responsible for deleting the files.
func (c *Client) StaleStagedUploads(ctx context.Context, olderThan time.Time) ([]PendingUpload, error) {
	var stale []PendingUpload
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uploaded_at < ?", olderThan).Find(&stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		return tx.Where("uploaded_at < ?", olderThan).Delete(&PendingUpload{}).Error
	})
	if err != nil {
		log.Error("failed to collect stale uploads", "error", err)
		return nil, err
	}
	return stale, nil
}
