package database

import (
	"context"
	"time"

	"github.com/actionsum/worktrack/internal/models"

	"github.com/pkg/errors"
)

const defaultListLimit = 20

// Repository stores screenshot upload history and worker failures.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// RecordUpload stores a successful upload.
func (r *Repository) RecordUpload(ctx context.Context, sessionID, filename string, size int, at time.Time) error {
	entry := &models.ScreenshotLog{
		SessionID:  sessionID,
		Filename:   filename,
		SizeBytes:  size,
		UploadedAt: at,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errors.Wrap(err, "failed to insert screenshot log")
	}
	return nil
}

// RecordFailure stores the failure that stopped a screenshot worker.
func (r *Repository) RecordFailure(ctx context.Context, sessionID, kind, message string, at time.Time) error {
	entry := &models.ErrorLog{
		SessionID: sessionID,
		Kind:      kind,
		Timestamp: at,
		ErrorMsg:  message,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errors.Wrap(err, "failed to insert error log")
	}
	return nil
}

// RecentUploads returns the newest uploads first.
func (r *Repository) RecentUploads(limit int) ([]models.ScreenshotLog, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var logs []models.ScreenshotLog
	if err := r.db.Order("uploaded_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query screenshot logs")
	}
	return logs, nil
}

// RecentFailures returns the newest worker failures first.
func (r *Repository) RecentFailures(limit int) ([]models.ErrorLog, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var logs []models.ErrorLog
	if err := r.db.Order("timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query error logs")
	}
	return logs, nil
}

// CountUploadsSince counts uploads at or after since.
func (r *Repository) CountUploadsSince(since time.Time) (int64, error) {
	var n int64
	err := r.db.Model(&models.ScreenshotLog{}).Where("uploaded_at >= ?", since).Count(&n).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count screenshot logs")
	}
	return n, nil
}

// Clear removes all history.
func (r *Repository) Clear() error {
	if err := r.db.Exec("DELETE FROM screenshot_logs").Error; err != nil {
		return errors.Wrap(err, "failed to clear screenshot logs")
	}
	if err := r.db.Exec("DELETE FROM error_logs").Error; err != nil {
		return errors.Wrap(err, "failed to clear error logs")
	}
	return nil
}
