package models

import (
	"time"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusDeleted  = "Deleted"
)

// Common notification type tags. The fanout layer treats type as an open
// string, these exist only so callers stop inventing spellings.
const (
	TypeHolidayAdded      = "holiday_added"
	TypeHolidayDeleted    = "holiday_deleted"
	TypeEventCreated      = "event_created"
	TypeTicketCreated     = "ticket_created"
	TypeTodoAssigned      = "todo_assigned"
	TypeLeaveStatusUpdate = "leave_status_update"
)

type User struct {
	ID            uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName     string             `gorm:"not null"                 json:"firstName"`
	LastName      string             `gorm:"not null"                 json:"lastName"`
	Email         string             `gorm:"unique;not null"          json:"email"`
	PasswordHash  string             `gorm:"not null"                 json:"-"`
	Role          string             `gorm:"not null;default:Employee" json:"role"`
	Status        string             `gorm:"not null;default:Active;index" json:"status"`
	Subscriptions []PushSubscription `gorm:"foreignKey:UserID"        json:"-"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	JTI       string `gorm:"index"           json:"jti"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

// PushSubscription is keyed by endpoint so that (un)subscribe is a single
// keyed insert/delete instead of a read-modify-write on the user row.
type PushSubscription struct {
	ID        uint      `gorm:"primaryKey"             json:"id"`
	UserID    uint      `gorm:"index;not null"         json:"user_id"`
	Endpoint  string    `gorm:"uniqueIndex;not null"   json:"endpoint"`
	P256dh    string    `gorm:"not null"               json:"p256dh"`
	Auth      string    `gorm:"not null"               json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_notifications_user_read_created,priority:1" json:"user"`
	Type      string         `gorm:"not null" json:"type"`
	Title     string         `gorm:"not null" json:"title"`
	Message   string         `gorm:"not null" json:"message"`
	Data      map[string]any `gorm:"serializer:json" json:"data"`
	Read      bool           `gorm:"not null;default:false;index:idx_notifications_user_read_created,priority:2" json:"read"`
	ReadAt    *time.Time     `json:"readAt,omitempty"`
	CreatedAt time.Time      `gorm:"index:idx_notifications_user_read_created,priority:3" json:"createdAt"`
}

type Holiday struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	Name      string    `gorm:"not null"       json:"name"`
	Date      time.Time `gorm:"not null"       json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	LeavePending  = "Pending"
	LeaveApproved = "Approved"
	LeaveRejected = "Rejected"
)

type Leave struct {
	ID        uint      `gorm:"primaryKey"              json:"id"`
	UserID    uint      `gorm:"index;not null"          json:"user_id"`
	Type      string    `gorm:"not null"                json:"type"`
	From      time.Time `gorm:"not null"                json:"from"`
	To        time.Time `gorm:"not null"                json:"to"`
	Reason    string    `json:"reason"`
	Status    string    `gorm:"not null;default:Pending" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
