package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/volveu/volve/internal/model"
	"github.com/volveu/volve/internal/service"
)

func TestActivityListQueryParsing(t *testing.T) {
	db := newTestDB(t)
	h := NewActivityHandler(service.NewActivityService(db))

	admin := seedUser(t, db, "admin@volve.org", model.RoleAdmin)
	npo := seedNpo(t, db, "Beach Cleanup Org")
	seedActivity(t, db, admin.ID, npo.ID)

	list := func(query string) (int, string) {
		c, rec := newRequest(t, http.MethodGet, "/api/activities"+query, "", nil)
		if err := h.List(c); err != nil {
			t.Fatalf("list returned error: %v", err)
		}
		return rec.Code, rec.Body.String()
	}

	t.Run("no query returns everything", func(t *testing.T) {
		code, body := list("")
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		var activities []model.Activity
		if err := json.Unmarshal([]byte(body), &activities); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(activities) != 1 {
			t.Errorf("expected 1 activity, got %d", len(activities))
		}
	})

	t.Run("repeatable tags param narrows the result", func(t *testing.T) {
		code, body := list("?tags=nonexistent&tags=alsomissing")
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		var activities []model.Activity
		if err := json.Unmarshal([]byte(body), &activities); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(activities) != 0 {
			t.Errorf("expected no activities, got %d", len(activities))
		}
	})

	t.Run("malformed window timestamp is a bad request", func(t *testing.T) {
		if code, _ := list("?window_start=yesterday&window_end=2026-09-01T00:00:00Z"); code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", code)
		}
	})

	t.Run("half-open window is a bad request", func(t *testing.T) {
		if code, _ := list("?window_start=2026-09-01T00:00:00Z"); code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", code)
		}
	})

	t.Run("non-numeric npo_id is a bad request", func(t *testing.T) {
		if code, _ := list("?npo_id=abc"); code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", code)
		}
	})
}

func TestActivityCreateUsesCallerAsAdmin(t *testing.T) {
	db := newTestDB(t)
	h := NewActivityHandler(service.NewActivityService(db))

	admin := seedUser(t, db, "admin@volve.org", model.RoleAdmin)
	other := seedUser(t, db, "other@volve.org", model.RoleAdmin)
	npo := seedNpo(t, db, "Beach Cleanup Org")

	// created_by_admin_id in the payload points at someone else; the stored
	// row must credit the verified caller.
	body := `{
		"title": "Shoreline Cleanup",
		"description": "Pick litter along the beach",
		"start_timestamp": "2099-06-01T09:00:00Z",
		"end_timestamp": "2099-06-01T12:00:00Z",
		"location": "North Beach",
		"primary_contact_info": "organizer@example.org",
		"npo_id": ` + itoa(npo.ID) + `,
		"created_by_admin_id": ` + itoa(other.ID) + `
	}`
	c, rec := newRequest(t, http.MethodPost, "/", body, claimsFor(admin))
	if err := h.Create(c); err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var activity model.Activity
	if err := json.Unmarshal(rec.Body.Bytes(), &activity); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if activity.CreatedByAdminID != admin.ID {
		t.Errorf("expected creating admin %d, got %d", admin.ID, activity.CreatedByAdminID)
	}
}
