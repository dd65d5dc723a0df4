package user

import (
	"time"

	"gorm.io/datatypes"
)

// Profile is a player's progress document, keyed by the id of the device that owns it.
type Profile struct {
	DeviceID string         `gorm:"column:device_id;primaryKey" json:"device_id"`
	Data     datatypes.JSON `gorm:"column:data;not null" json:"data"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
