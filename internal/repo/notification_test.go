package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/hrms_backend/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.PushSubscription{},
		&models.Notification{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, status string) *models.User {
	t.Helper()

	u := models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "x",
		Role:         "Employee",
		Status:       status,
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func TestNotificationRepo_CreateForUser(t *testing.T) {
	db := initTestDB(t)
	r := &NotificationRepo{DB: db}
	ctx := context.Background()

	u := createUser(t, db, "a@corp.test", models.StatusActive)

	n, err := r.CreateForUser(ctx, u.ID, "ticket_created", "New ticket", "A ticket was created", map[string]any{"ticketId": "T1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, n.UserID)
	assert.False(t, n.Read)
	assert.Nil(t, n.ReadAt)
	assert.Equal(t, "T1", n.Data["ticketId"])

	// No uniqueness constraint, a duplicate insert is fine.
	_, err = r.CreateForUser(ctx, u.ID, "ticket_created", "New ticket", "A ticket was created", map[string]any{"ticketId": "T1"})
	require.NoError(t, err)
}

func TestNotificationRepo_CreateForAllActive(t *testing.T) {
	db := initTestDB(t)
	r := &NotificationRepo{DB: db}
	ctx := context.Background()

	for i := 0; i < 40; i++ {
		createUser(t, db, fmt.Sprintf("active%d@corp.test", i), models.StatusActive)
	}
	for i := 0; i < 6; i++ {
		createUser(t, db, fmt.Sprintf("inactive%d@corp.test", i), models.StatusInactive)
	}
	for i := 0; i < 4; i++ {
		createUser(t, db, fmt.Sprintf("deleted%d@corp.test", i), models.StatusDeleted)
	}

	created, err := r.CreateForAllActive(ctx, "holiday_added", "New holiday", "Office closed", map[string]any{"holidayId": "H1"})
	require.NoError(t, err)
	require.Len(t, created, 40)
	for _, n := range created {
		assert.NotZero(t, n.ID)
	}

	var total int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&total).Error)
	assert.Equal(t, int64(40), total)

	// One record per recipient, identical content, distinct recipients.
	var distinct int64
	require.NoError(t, db.Model(&models.Notification{}).Distinct("user_id").Count(&distinct).Error)
	assert.Equal(t, int64(40), distinct)
}

func TestNotificationRepo_CreateForAllActive_NoActiveUsers(t *testing.T) {
	db := initTestDB(t)
	r := &NotificationRepo{DB: db}

	created, err := r.CreateForAllActive(context.Background(), "holiday_added", "t", "m", nil)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestNotificationRepo_ListForUser(t *testing.T) {
	db := initTestDB(t)
	r := &NotificationRepo{DB: db}
	ctx := context.Background()

	u := createUser(t, db, "list@corp.test", models.StatusActive)
	other := createUser(t, db, "other@corp.test", models.StatusActive)

	for i := 0; i < 5; i++ {
		n, err := r.CreateForUser(ctx, u.ID, "event_created", fmt.Sprintf("Event %d", i), "m", nil)
		require.NoError(t, err)
		// Spread creation times so newest-first ordering is observable.
		require.NoError(t, db.Model(n).Update("created_at", time.Now().Add(time.Duration(i)*time.Minute)).Error)
	}
	_, err := r.CreateForUser(ctx, other.ID, "event_created", "Not yours", "m", nil)
	require.NoError(t, err)

	items, total, unread, err := r.ListForUser(ctx, u.ID, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, int64(5), unread)
	require.Len(t, items, 3)
	assert.Equal(t, "Event 4", items[0].Title)
	assert.Equal(t, "Event 3", items[1].Title)
	assert.Equal(t, "Event 2", items[2].Title)

	items, _, _, err = r.ListForUser(ctx, u.ID, 3, 3)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Event 1", items[0].Title)
}

func TestNotificationRepo_MarkRead(t *testing.T) {
	db := initTestDB(t)
	r := &NotificationRepo{DB: db}
	ctx := context.Background()

	a := createUser(t, db, "usera@corp.test", models.StatusActive)
	b := createUser(t, db, "userb@corp.test", models.StatusActive)

	n, err := r.CreateForUser(ctx, a.ID, "todo_assigned", "Todo", "m", nil)
	require.NoError(t, err)

	// User B cannot see or mark A's record, NotFound rather than Forbidden.
	_, err = r.MarkRead(ctx, n.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var untouched models.Notification
	require.NoError(t, db.First(&untouched, n.ID).Error)
	assert.False(t, untouched.Read)
	assert.Nil(t, untouched.ReadAt)

	got, err := r.MarkRead(ctx, n.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
	require.NotNil(t, got.ReadAt)
	assert.WithinDuration(t, time.Now(), *got.ReadAt, 5*time.Second)
}

func TestNotificationRepo_MarkAllRead_Idempotent(t *testing.T) {
	db := initTestDB(t)
	r := &NotificationRepo{DB: db}
	ctx := context.Background()

	u := createUser(t, db, "bulk@corp.test", models.StatusActive)
	for i := 0; i < 3; i++ {
		_, err := r.CreateForUser(ctx, u.ID, "event_created", "E", "m", nil)
		require.NoError(t, err)
	}

	require.NoError(t, r.MarkAllRead(ctx, u.ID))
	unread, err := r.UnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	// Second call matches nothing and still succeeds.
	require.NoError(t, r.MarkAllRead(ctx, u.ID))
	unread, err = r.UnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNotificationRepo_Cleanup(t *testing.T) {
	db := initTestDB(t)
	r := &NotificationRepo{DB: db}
	ctx := context.Background()

	u := createUser(t, db, "cleanup@corp.test", models.StatusActive)

	old, err := r.CreateForUser(ctx, u.ID, "event_created", "old read", "m", nil)
	require.NoError(t, err)
	recent, err := r.CreateForUser(ctx, u.ID, "event_created", "recent read", "m", nil)
	require.NoError(t, err)
	oldUnread, err := r.CreateForUser(ctx, u.ID, "event_created", "old unread", "m", nil)
	require.NoError(t, err)

	_, err = r.MarkRead(ctx, old.ID, u.ID)
	require.NoError(t, err)
	_, err = r.MarkRead(ctx, recent.ID, u.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(old).Update("created_at", time.Now().AddDate(0, 0, -31)).Error)
	require.NoError(t, db.Model(recent).Update("created_at", time.Now().AddDate(0, 0, -29)).Error)
	require.NoError(t, db.Model(oldUnread).Update("created_at", time.Now().AddDate(0, 0, -60)).Error)

	deleted, err := r.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	titles := []string{remaining[0].Title, remaining[1].Title}
	assert.Contains(t, titles, "recent read")
	assert.Contains(t, titles, "old unread")
}
