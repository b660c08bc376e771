package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/hrms_backend/internal/models"
)

type SubscriptionRepo struct {
	DB *gorm.DB
}

// Add registers a push endpoint for a user. Uniqueness is by endpoint, so
// re-registering the same endpoint is a keyed upsert rather than a
// read-modify-write on the user's subscription list. A browser that logged
// into a different account keeps its endpoint, so an existing row is
// reassigned to the caller along with fresh keys.
func (r *SubscriptionRepo) Add(ctx context.Context, userID uint, endpoint, p256dh, auth string) (*models.PushSubscription, error) {
	sub := models.PushSubscription{
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}
	tx := r.DB.WithContext(ctx).Where("endpoint = ?", endpoint).FirstOrCreate(&sub)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if sub.UserID != userID || sub.P256dh != p256dh || sub.Auth != auth {
		sub.UserID = userID
		sub.P256dh = p256dh
		sub.Auth = auth
		if err := r.DB.WithContext(ctx).Save(&sub).Error; err != nil {
			return nil, err
		}
	}
	return &sub, nil
}

// RemoveByEndpoint deletes a subscription by its key alone. Reserved for the
// delivery path pruning endpoints the push service reported as gone; the
// caller-facing unsubscribe goes through RemoveUserEndpoint.
func (r *SubscriptionRepo) RemoveByEndpoint(ctx context.Context, endpoint string) error {
	return r.DB.WithContext(ctx).
		Where("endpoint = ?", endpoint).
		Delete(&models.PushSubscription{}).Error
}

// RemoveUserEndpoint deletes one endpoint only when it belongs to the user,
// so a caller cannot drop another account's subscription by guessing its
// endpoint URI.
func (r *SubscriptionRepo) RemoveUserEndpoint(ctx context.Context, userID uint, endpoint string) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{})
	return res.RowsAffected, res.Error
}

func (r *SubscriptionRepo) RemoveAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.PushSubscription{})
	return res.RowsAffected, res.Error
}

func (r *SubscriptionRepo) ForUser(ctx context.Context, userID uint) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}
