package models

import (
	"time"

	"gorm.io/gorm"
)

// Requester is a person who asked for access to a datafile. One row per
// submitted request; the row is written at creation and once more when
// the emailed link is redeemed.
type Requester struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"size:120;not null" json:"email"`
	Name         string `gorm:"size:120;not null" json:"name"`
	Organisation string `gorm:"size:120;not null" json:"organisation"`
	// Contact records consent to a follow-up email.
	Contact    bool     `json:"contact"`
	PrimaryUse []string `gorm:"serializer:json" json:"primary_use"`
	// OtherUse holds the justification required when the "other"
	// planned use is ticked.
	OtherUse string `gorm:"size:255" json:"other_use"`
	AdditionalInfo string     `gorm:"type:text" json:"additional_info"`
	RequestedAt    time.Time  `json:"requested_at"`
	AccessedAt     *time.Time `json:"accessed_at"`
	DatafileID     uint       `gorm:"not null;index" json:"datafile_id"`
	Datafile       Datafile   `json:"-"`
}

// BeforeCreate stamps the request time when the caller did not.
func (r *Requester) BeforeCreate(tx *gorm.DB) error {
	if r.RequestedAt.IsZero() {
		r.RequestedAt = time.Now().UTC()
	}
	return nil
}
