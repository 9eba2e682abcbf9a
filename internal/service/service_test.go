package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/volveu/volve/internal/model"
)

// newTestDB opens an isolated in-memory database migrated with the full
// schema. cache=shared plus a single pooled connection keeps every session
// of a test on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&model.User{},
		&model.Npo{},
		&model.Tag{},
		&model.Activity{},
		&model.Enrollment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()
	user := model.User{
		Name:     "Test " + email,
		Email:    email,
		Password: "irrelevant-hash",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return &user
}

func seedNpo(t *testing.T, db *gorm.DB, name string) *model.Npo {
	t.Helper()
	npo := model.Npo{Name: name, Description: name + " description"}
	if err := db.Create(&npo).Error; err != nil {
		t.Fatalf("failed to seed npo %s: %v", name, err)
	}
	return &npo
}

// seedActivity goes through the mutation service so tag connect-or-create
// is exercised the same way production writes are.
func seedActivity(t *testing.T, svc *ActivityService, adminID, npoID uint, title, description string, start, end time.Time, tags ...string) *model.Activity {
	t.Helper()

	input := CreateActivityInput{
		Title:              title,
		Description:        description,
		StartTimestamp:     start,
		EndTimestamp:       end,
		Location:           "Somewhere",
		PrimaryContactInfo: "contact@example.org",
		NpoID:              npoID,
	}
	for _, tag := range tags {
		input.Tags = append(input.Tags, TagInput{Title: tag})
	}

	activity, err := svc.Create(context.Background(), adminID, input)
	if err != nil {
		t.Fatalf("failed to seed activity %q: %v", title, err)
	}
	return activity
}

func activityIDs(activities []model.Activity) []uint {
	ids := make([]uint, 0, len(activities))
	for _, activity := range activities {
		ids = append(ids, activity.ID)
	}
	return ids
}

func sameIDs(got, want []uint) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[uint]int, len(want))
	for _, id := range want {
		seen[id]++
	}
	for _, id := range got {
		seen[id]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}
