package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/smartkisan/kisan-backend/pkg/enums"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

// User is a registered marketplace account.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Phone        string         `gorm:"column:phone;not null;uniqueIndex" json:"phone"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.Role     `gorm:"column:role;not null;default:'farmer'" json:"role"`
	Language     enums.Language `gorm:"column:language;not null;default:'en'" json:"language"`
	Location     types.Location `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Profile      UserProfile    `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	Preferences  Preferences    `gorm:"column:preferences;type:jsonb;serializer:json" json:"preferences"`
	IsVerified   bool           `gorm:"column:is_verified;not null;default:false" json:"isVerified"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true" json:"isActive"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at" json:"lastLogin,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

type UserProfile struct {
	Avatar     string         `gorm:"column:avatar" json:"avatar,omitempty"`
	Bio        string         `gorm:"column:bio" json:"bio,omitempty"`
	FarmSize   float64        `gorm:"column:farm_size" json:"farmSize,omitempty"`
	Crops      pq.StringArray `gorm:"column:crops;type:text[]" json:"crops"`
	Experience int            `gorm:"column:experience" json:"experience,omitempty"`
}

type Preferences struct {
	Notifications NotificationPreferences `json:"notifications"`
	Units         enums.MeasurementUnits  `json:"units"`
}

type NotificationPreferences struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

// DefaultPreferences enables every channel with metric units.
func DefaultPreferences() Preferences {
	return Preferences{
		Notifications: NotificationPreferences{Email: true, SMS: true, Push: true},
		Units:         enums.UnitsMetric,
	}
}
