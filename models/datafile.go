package models

import (
	"encoding/json"
	"os"

	"gorm.io/gorm"
)

// Datafile describes a downloadable object held in the backing store.
// It is metadata only, never the object bytes. Records are managed
// out-of-band; this service only reads them.
type Datafile struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Slug        string `gorm:"size:24;uniqueIndex;not null" json:"slug"`
	Name        string `gorm:"size:120;not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
	Size        string `gorm:"size:120;not null" json:"size"`
	// Filename is the object key in the bucket. Not validated at write
	// time; a dangling key only shows up when a link is requested.
	Filename string `gorm:"size:120;not null" json:"filename"`
	DOI      string `gorm:"size:120" json:"doi,omitempty"`
	Blurb    string `gorm:"type:text" json:"blurb,omitempty"`
}

// SeedDatafiles loads datafile records from a JSON file when the table is
// empty. This is the administrative channel for publishing new files; a
// non-empty table is left untouched.
func SeedDatafiles(db *gorm.DB, path string) (int, error) {
	var count int64
	if err := db.Model(&Datafile{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	var files []Datafile
	if err := json.Unmarshal(raw, &files); err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}
	if err := db.Create(&files).Error; err != nil {
		return 0, err
	}
	return len(files), nil
}
