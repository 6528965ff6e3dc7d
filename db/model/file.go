package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/puoklam/meetup-app-backend/env"
	"gorm.io/gorm"
)

type File struct {
	Base
	Key  uuid.UUID `json:"-" gorm:"type:uuid"`
	Name string    `json:"name"`
	Path string    `json:"path"`
	URL  string    `json:"url" gorm:"-"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.Key == uuid.Nil {
		f.Key = uuid.New()
	}
	return nil
}

// URL is not a column, it is derived from where the app is serving files
func (f *File) AfterFind(tx *gorm.DB) error {
	f.URL = strings.TrimSuffix(env.APP_URL, "/") + "/files/" + f.Path
	return nil
}
