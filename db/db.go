package db

import (
	"context"

	"github.com/puoklam/meetup-app-backend/db/model"
	"gorm.io/gorm"
)

var db *gorm.DB

// Init opens the database and migrates the schema. The dialector is
// injected so tests can run against an embedded database.
func Init(dialector gorm.Dialector) error {
	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return err
	}
	if err := gdb.AutoMigrate(&model.User{}, &model.Session{}, &model.File{}, &model.Meetup{}); err != nil {
		return err
	}
	db = gdb
	return nil
}

func GetDB(ctx context.Context) *gorm.DB {
	return db.WithContext(ctx)
}
