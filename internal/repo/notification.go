package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/hrms_backend/internal/models"
)

type NotificationRepo struct {
	DB *gorm.DB
}

// CreateForUser inserts one notification record. There is no uniqueness
// constraint, repeated calls create repeated records.
func (r *NotificationRepo) CreateForUser(ctx context.Context, userID uint, typ, title, message string, data map[string]any) (*models.Notification, error) {
	n := models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := r.DB.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateForAllActive snapshots the Active accounts and inserts one record
// per account in a single batch. Returns the created records with their ids
// filled in.
func (r *NotificationRepo) CreateForAllActive(ctx context.Context, typ, title, message string, data map[string]any) ([]models.Notification, error) {
	var ids []uint
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("status = ?", models.StatusActive).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	batch := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, models.Notification{
			UserID:  id,
			Type:    typ,
			Title:   title,
			Message: message,
			Data:    data,
		})
	}
	if err := r.DB.WithContext(ctx).CreateInBatches(batch, 200).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

// ListForUser returns a newest-first page plus the total and unread counts.
// The two counts come from separate queries, small staleness between them
// is acceptable.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Notification, int64, int64, error) {
	db := r.DB.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}

	var unread int64
	if err := db.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&unread).Error; err != nil {
		return nil, 0, 0, err
	}

	var items []models.Notification
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, 0, err
	}
	return items, total, unread, nil
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var unread int64
	err := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&unread).Error
	return unread, err
}

// MarkRead flips one record to read, scoped to the recipient. A record that
// belongs to another user is indistinguishable from a missing one.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint) (*models.Notification, error) {
	now := time.Now()
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"read": true, "read_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var n models.Notification
	if err := r.DB.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAllRead is idempotent, a second call matches zero rows and succeeds.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]any{"read": true, "read_at": time.Now()}).Error
}

// Cleanup deletes read records older than the threshold and returns the
// deleted count.
func (r *NotificationRepo) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		olderThanDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	res := r.DB.WithContext(ctx).
		Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
