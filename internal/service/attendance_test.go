package service

import (
	"context"
	"testing"
	"time"

	"github.com/volveu/volve/internal/apperr"
	"github.com/volveu/volve/internal/model"
)

func TestSignUpAndWithdraw(t *testing.T) {
	db := newTestDB(t)
	activities := NewActivityService(db)
	svc := NewAttendanceService(db)
	ctx := context.Background()

	admin := seedUser(t, db, "admin@volve.org", "ADMIN")
	volunteer := seedUser(t, db, "vol@volve.org", "USER")
	npo := seedNpo(t, db, "Beach Cleanup Org")
	base := time.Now().Add(24 * time.Hour)
	activity := seedActivity(t, activities, admin.ID, npo.ID, "Shoreline Cleanup", "d",
		base, base.Add(2*time.Hour))

	t.Run("first signup succeeds with hours unset", func(t *testing.T) {
		enrollment, err := svc.SignUp(ctx, volunteer.ID, activity.ID)
		if err != nil {
			t.Fatalf("signup failed: %v", err)
		}
		if enrollment.HoursPut != nil {
			t.Errorf("expected hours unset, got %v", *enrollment.HoursPut)
		}
	})

	t.Run("duplicate signup is a conflict and leaves one row", func(t *testing.T) {
		_, err := svc.SignUp(ctx, volunteer.ID, activity.ID)
		if !apperr.IsConflict(err) {
			t.Fatalf("expected conflict error, got %v", err)
		}

		var count int64
		db.Model(&model.Enrollment{}).
			Where("user_id = ? AND activity_id = ?", volunteer.ID, activity.ID).
			Count(&count)
		if count != 1 {
			t.Errorf("expected exactly one membership row, got %d", count)
		}
	})

	t.Run("withdraw removes the row", func(t *testing.T) {
		if err := svc.Withdraw(ctx, volunteer.ID, activity.ID); err != nil {
			t.Fatalf("withdraw failed: %v", err)
		}

		var count int64
		db.Model(&model.Enrollment{}).
			Where("user_id = ? AND activity_id = ?", volunteer.ID, activity.ID).
			Count(&count)
		if count != 0 {
			t.Errorf("expected no membership rows, got %d", count)
		}
	})

	t.Run("withdraw without enrollment is not found", func(t *testing.T) {
		err := svc.Withdraw(ctx, volunteer.ID, activity.ID)
		if !apperr.IsNotFound(err) {
			t.Errorf("expected not-found error, got %v", err)
		}
	})

	t.Run("signup works again after withdrawal", func(t *testing.T) {
		if _, err := svc.SignUp(ctx, volunteer.ID, activity.ID); err != nil {
			t.Fatalf("re-signup failed: %v", err)
		}
	})

	t.Run("signup for an unknown activity is not found", func(t *testing.T) {
		_, err := svc.SignUp(ctx, volunteer.ID, 9999)
		if !apperr.IsNotFound(err) {
			t.Errorf("expected not-found error, got %v", err)
		}
	})
}

func TestAdminEnrollment(t *testing.T) {
	db := newTestDB(t)
	activities := NewActivityService(db)
	svc := NewAttendanceService(db)
	ctx := context.Background()

	admin := seedUser(t, db, "admin@volve.org", "ADMIN")
	volunteer := seedUser(t, db, "vol@volve.org", "USER")
	npo := seedNpo(t, db, "Beach Cleanup Org")
	base := time.Now().Add(24 * time.Hour)
	activity := seedActivity(t, activities, admin.ID, npo.ID, "Shoreline Cleanup", "d",
		base, base.Add(2*time.Hour))

	t.Run("enrolling an unknown user is not found", func(t *testing.T) {
		_, err := svc.Enroll(ctx, 9999, activity.ID)
		if !apperr.IsNotFound(err) {
			t.Errorf("expected not-found error, got %v", err)
		}
	})

	t.Run("records hours on an existing enrollment", func(t *testing.T) {
		enrollment, err := svc.Enroll(ctx, volunteer.ID, activity.ID)
		if err != nil {
			t.Fatalf("enroll failed: %v", err)
		}

		updated, err := svc.RecordHours(ctx, enrollment.ID, 3)
		if err != nil {
			t.Fatalf("record hours failed: %v", err)
		}
		if updated.HoursPut == nil || *updated.HoursPut != 3 {
			t.Errorf("expected hours 3, got %v", updated.HoursPut)
		}
	})

	t.Run("rejects negative hours", func(t *testing.T) {
		_, err := svc.RecordHours(ctx, 1, -1)
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("recording hours on an unknown enrollment is not found", func(t *testing.T) {
		_, err := svc.RecordHours(ctx, 9999, 2)
		if !apperr.IsNotFound(err) {
			t.Errorf("expected not-found error, got %v", err)
		}
	})

	t.Run("removing an unknown enrollment is not found", func(t *testing.T) {
		if err := svc.Remove(ctx, 9999); !apperr.IsNotFound(err) {
			t.Errorf("expected not-found error, got %v", err)
		}
	})
}

func TestEnrollmentList(t *testing.T) {
	db := newTestDB(t)
	activities := NewActivityService(db)
	svc := NewAttendanceService(db)
	ctx := context.Background()

	admin := seedUser(t, db, "admin@volve.org", "ADMIN")
	alice := seedUser(t, db, "alice@volve.org", "USER")
	bob := seedUser(t, db, "bob@volve.org", "USER")
	npo := seedNpo(t, db, "Beach Cleanup Org")
	base := time.Now().Add(24 * time.Hour)
	cleanup := seedActivity(t, activities, admin.ID, npo.ID, "Cleanup", "d",
		base, base.Add(2*time.Hour))
	gardening := seedActivity(t, activities, admin.ID, npo.ID, "Gardening", "d",
		base.Add(24*time.Hour), base.Add(26*time.Hour))

	for _, pair := range []struct{ userID, activityID uint }{
		{alice.ID, cleanup.ID},
		{alice.ID, gardening.ID},
		{bob.ID, cleanup.ID},
	} {
		if _, err := svc.SignUp(ctx, pair.userID, pair.activityID); err != nil {
			t.Fatalf("signup failed: %v", err)
		}
	}

	t.Run("no filter returns everything", func(t *testing.T) {
		got, err := svc.List(ctx, EnrollmentFilter{})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 enrollments, got %d", len(got))
		}
	})

	t.Run("filters by activity", func(t *testing.T) {
		got, err := svc.List(ctx, EnrollmentFilter{ActivityID: &cleanup.ID})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 enrollments, got %d", len(got))
		}
	})

	t.Run("filters conjunctively by activity and user", func(t *testing.T) {
		got, err := svc.List(ctx, EnrollmentFilter{ActivityID: &cleanup.ID, UserID: &bob.ID})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 1 || got[0].UserID != bob.ID {
			t.Errorf("expected bob's cleanup enrollment, got %+v", got)
		}
	})

	t.Run("rows carry user and activity detail", func(t *testing.T) {
		got, err := svc.ListOwn(ctx, alice.ID)
		if err != nil {
			t.Fatalf("list own failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 enrollments, got %d", len(got))
		}
		if got[0].User.Email != "alice@volve.org" {
			t.Errorf("expected user preloaded, got %+v", got[0].User)
		}
		if got[0].Activity.Npo.ID != npo.ID {
			t.Errorf("expected activity npo preloaded, got %+v", got[0].Activity.Npo)
		}
	})
}

func TestVolunteerStats(t *testing.T) {
	db := newTestDB(t)
	activities := NewActivityService(db)
	svc := NewAttendanceService(db)
	ctx := context.Background()

	admin := seedUser(t, db, "admin@volve.org", "ADMIN")
	volunteer := seedUser(t, db, "vol@volve.org", "USER")
	beachOrg := seedNpo(t, db, "Beach Cleanup Org")
	foodOrg := seedNpo(t, db, "Food Bank")
	base := time.Now().Add(24 * time.Hour)

	cleanup := seedActivity(t, activities, admin.ID, beachOrg.ID, "Cleanup", "d",
		base, base.Add(2*time.Hour))
	gardening := seedActivity(t, activities, admin.ID, beachOrg.ID, "Gardening", "d",
		base.Add(24*time.Hour), base.Add(26*time.Hour))
	foodDrive := seedActivity(t, activities, admin.ID, foodOrg.ID, "Food Drive", "d",
		base.Add(48*time.Hour), base.Add(50*time.Hour))

	for i, activityID := range []uint{cleanup.ID, gardening.ID, foodDrive.ID} {
		enrollment, err := svc.SignUp(ctx, volunteer.ID, activityID)
		if err != nil {
			t.Fatalf("signup failed: %v", err)
		}
		// Credit hours on the first two enrollments only
		if i < 2 {
			if _, err := svc.RecordHours(ctx, enrollment.ID, float64(2+i)); err != nil {
				t.Fatalf("record hours failed: %v", err)
			}
		}
	}

	stats, err := svc.Stats(ctx, volunteer.ID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalHours != 5 {
		t.Errorf("expected 5 total hours, got %v", stats.TotalHours)
	}
	if stats.EnrollmentCount != 3 {
		t.Errorf("expected 3 enrollments, got %d", stats.EnrollmentCount)
	}
	if stats.NpoCount != 2 {
		t.Errorf("expected 2 distinct NPOs, got %d", stats.NpoCount)
	}
}

// Mirrors the end-to-end lifecycle: signup, hours credit, withdrawal, and
// the volunteer disappearing from the activity detail.
func TestEnrollmentLifecycle(t *testing.T) {
	db := newTestDB(t)
	activities := NewActivityService(db)
	svc := NewAttendanceService(db)
	ctx := context.Background()

	admin := seedUser(t, db, "admin@volve.org", "ADMIN")
	volunteer := seedUser(t, db, "vol@volve.org", "USER")
	npo := seedNpo(t, db, "Beach Cleanup Org")

	capacity := 20
	start := time.Now().Add(2 * time.Hour)
	activity, err := activities.Create(ctx, admin.ID, CreateActivityInput{
		Title:              "Shoreline Cleanup",
		Description:        "Pick litter along the beach",
		StartTimestamp:     start,
		EndTimestamp:       start.Add(2 * time.Hour),
		Location:           "North Beach",
		PrimaryContactInfo: "organizer@example.org",
		Capacity:           &capacity,
		NpoID:              npo.ID,
		Tags:               []TagInput{{Title: "environment"}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	enrollment, err := svc.SignUp(ctx, volunteer.ID, activity.ID)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if enrollment.HoursPut != nil {
		t.Fatalf("expected hours unset after signup")
	}

	if _, err := svc.RecordHours(ctx, enrollment.ID, 3); err != nil {
		t.Fatalf("record hours failed: %v", err)
	}

	if err := svc.Withdraw(ctx, volunteer.ID, activity.ID); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	detail, err := activities.Get(ctx, activity.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	for _, e := range detail.Enrollments {
		if e.UserID == volunteer.ID {
			t.Errorf("volunteer still listed after withdrawal")
		}
	}
}
