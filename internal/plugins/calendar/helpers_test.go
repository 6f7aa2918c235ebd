package calendar

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/keyxmakerx/calview/internal/apperror"
)

// --- Fixtures ---

// at builds a local wall-clock time.
func at(y int, m time.Month, d, hour, minute int) time.Time {
	return time.Date(y, m, d, hour, minute, 0, 0, time.Local)
}

func testOptions() Options {
	return Options{
		DisplayCap: 3,
		Colors:     []string{"#3b82f6", "#ef4444", "#10b981"},
		Categories: []string{"Work", "Personal"},
	}
}

func mkEvent(id string, start, end time.Time) Event {
	return Event{ID: id, Title: "Event " + id, Start: start, End: end, Color: "#3b82f6"}
}

func eventIDs(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func assertIDs(t *testing.T, got []Event, want ...string) {
	t.Helper()
	g := eventIDs(got)
	if len(g) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, g)
		}
	}
}

// sequentialIDs returns an ID generator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

// --- Mock Repository ---

// mockEventRepo implements EventRepository for testing.
type mockEventRepo struct {
	createFn    func(ctx context.Context, evt *Event) error
	findByIDFn  func(ctx context.Context, id string) (*Event, error)
	updateFn    func(ctx context.Context, evt *Event) error
	deleteFn    func(ctx context.Context, id string) error
	listFn      func(ctx context.Context) ([]Event, error)
	listRangeFn func(ctx context.Context, from, to time.Time) ([]Event, error)
}

func (m *mockEventRepo) Create(ctx context.Context, evt *Event) error {
	if m.createFn != nil {
		return m.createFn(ctx, evt)
	}
	return nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*Event, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("event not found")
}

func (m *mockEventRepo) Update(ctx context.Context, evt *Event) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, evt)
	}
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockEventRepo) List(ctx context.Context) ([]Event, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockEventRepo) ListRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	if m.listRangeFn != nil {
		return m.listRangeFn(ctx, from, to)
	}
	return nil, nil
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}
