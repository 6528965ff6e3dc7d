package db_test

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/puoklam/meetup-app-backend/db"
	"github.com/puoklam/meetup-app-backend/db/model"
	"github.com/puoklam/meetup-app-backend/env"
	"gorm.io/driver/sqlite"
)

var dbSeq int64

func setupDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:db_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	if err := db.Init(sqlite.Open(dsn)); err != nil {
		t.Fatal(err)
	}
}

func TestFileHooks(t *testing.T) {
	setupDB(t)
	f := &model.File{Name: "banner.png", Path: "abc123-banner.png"}
	if err := db.GetDB(context.Background()).Create(f).Error; err != nil {
		t.Fatal(err)
	}
	if f.Key == uuid.Nil {
		t.Fatal("storage key not generated on create")
	}

	var got model.File
	if err := db.GetDB(context.Background()).First(&got, f.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Key != f.Key {
		t.Fatalf("key = %v, want %v", got.Key, f.Key)
	}
	want := strings.TrimSuffix(env.APP_URL, "/") + "/files/abc123-banner.png"
	if got.URL != want {
		t.Fatalf("url = %q, want %q", got.URL, want)
	}
}

func TestMeetupCanceled(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	u := &model.User{Email: "ana@example.com", Name: "Ana"}
	if err := db.GetDB(ctx).Create(u).Error; err != nil {
		t.Fatal(err)
	}
	f := &model.File{Name: "banner.png", Path: "banner.png"}
	if err := db.GetDB(ctx).Create(f).Error; err != nil {
		t.Fatal(err)
	}
	m := &model.Meetup{UserID: u.ID, BannerID: f.ID, Title: "Launch"}
	if err := db.GetDB(ctx).Create(m).Error; err != nil {
		t.Fatal(err)
	}
	if m.Canceled() {
		t.Fatal("fresh meetup reported canceled")
	}
}
