package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/hrportal/internal/app/store/audit"
	"github.com/dalemusser/hrportal/internal/testutil"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	event := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    "u-1",
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
	}

	err := store.Log(ctx, event)
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	// Verify event was logged
	events, err := store.GetByUser(ctx, "u-1", 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
}

func TestStore_Log_AutoSetsTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		IP:        "192.168.1.1",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	after := time.Now().Add(time.Second)

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Timestamp.Before(before) || events[0].Timestamp.After(after) {
		t.Errorf("expected timestamp to be set to current time, got %v", events[0].Timestamp)
	}
}

func TestStore_GetByApplication(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	steps := []string{"I-983", "I-20"}
	for _, step := range steps {
		err := store.Log(ctx, audit.Event{
			Category:      audit.CategoryReview,
			EventType:     audit.EventVisaStepApproved,
			ActorID:       "hr-1",
			EmployeeID:    "e-1",
			ApplicationID: "a-1",
			Success:       true,
			Details:       map[string]string{"step": step},
		})
		if err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}
	if err := store.Log(ctx, audit.Event{
		Category:      audit.CategoryReview,
		EventType:     audit.EventOnboardingApproved,
		ApplicationID: "a-2",
		Success:       true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByApplication(ctx, "a-1", 10)
	if err != nil {
		t.Fatalf("GetByApplication failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for a-1, got %d", len(events))
	}
	if events[0].Details["step"] != "I-20" {
		t.Errorf("expected newest first, got step %q", events[0].Details["step"])
	}
}

func TestStore_Query_ByCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, ev := range []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Success: true},
		{Category: audit.CategoryReview, EventType: audit.EventOnboardingRejected, Success: true},
	} {
		if err := store.Log(ctx, ev); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryReview})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventOnboardingRejected {
		t.Errorf("expected 1 review event, got %+v", events)
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 auth event, got %d", n)
	}
}

func TestStore_GetFailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	since := time.Now().Add(-time.Minute)
	for _, ev := range []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailed, FailureReason: "Invalid credentials"},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailed, Timestamp: since.Add(-time.Hour)},
	} {
		if err := store.Log(ctx, ev); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.GetFailedLogins(ctx, since, 10)
	if err != nil {
		t.Fatalf("GetFailedLogins failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 recent failed login, got %d", len(events))
	}
}
