package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/volveu/volve/internal/middleware"
	"github.com/volveu/volve/internal/model"
	"github.com/volveu/volve/internal/service"
	"github.com/volveu/volve/pkg/jwtutil"
)

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
	user := model.User{Name: "Test " + email, Email: email, Password: "irrelevant-hash", Role: role}
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

func seedActivity(t *testing.T, db *gorm.DB, adminID, npoID uint) *model.Activity {
	t.Helper()

	start := time.Now().Add(24 * time.Hour)
	activity, err := service.NewActivityService(db).Create(context.Background(), adminID, service.CreateActivityInput{
		Title:              "Shoreline Cleanup",
		Description:        "Pick litter along the beach",
		StartTimestamp:     start,
		EndTimestamp:       start.Add(2 * time.Hour),
		Location:           "North Beach",
		PrimaryContactInfo: "organizer@example.org",
		NpoID:              npoID,
	})
	if err != nil {
		t.Fatalf("failed to seed activity: %v", err)
	}
	return activity
}

// newRequest builds an echo context carrying the given caller claims, the
// same shape the auth middleware leaves behind.
func newRequest(t *testing.T, method, path, body string, claims *jwtutil.UserClaims) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func claimsFor(user *model.User) *jwtutil.UserClaims {
	return &jwtutil.UserClaims{Email: user.Email, UserID: user.ID, Role: user.Role}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
