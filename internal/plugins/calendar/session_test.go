package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func sampleWidget() Widget {
	c := newTestController()
	w := weekWidget(c)
	w, _ = c.Dispatch(w, Input{Kind: InputPointerDown, Slot: Slot{Column: 3, Day: wed, Hour: 10}})
	w, _ = c.Dispatch(w, Input{Kind: InputPointerMove, Slot: Slot{Column: 3, Day: wed, Hour: 12}})
	return w
}

func assertWidgetRoundTrip(t *testing.T, got *Widget, want Widget) {
	t.Helper()
	if got == nil {
		t.Fatal("expected a stored widget, got nil")
	}
	if !got.State.Reference.Equal(want.State.Reference) || got.State.View != want.State.View {
		t.Errorf("expected state %+v, got %+v", want.State, got.State)
	}
	gotSpan, ok := got.Drag.Pending()
	wantSpan, _ := want.Drag.Pending()
	if !ok || !gotSpan.Start.Equal(wantSpan.Start) || !gotSpan.End.Equal(wantSpan.End) {
		t.Errorf("expected drag %+v, got %+v", wantSpan, gotSpan)
	}
	if got.Drag.Column == nil || *got.Drag.Column != 3 {
		t.Error("expected the column lock to survive")
	}
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	store := NewRedisSessionStore(rdb, time.Hour)

	if w, err := store.Load(ctx, "nobody"); err != nil || w != nil {
		t.Fatalf("expected (nil, nil) for an unknown session, got (%v, %v)", w, err)
	}

	want := sampleWidget()
	if err := store.Save(ctx, "s1", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists(sessionKeyPrefix + "s1") {
		t.Fatal("expected the session key in redis")
	}
	if ttl := mr.TTL(sessionKeyPrefix + "s1"); ttl != time.Hour {
		t.Errorf("expected a 1h TTL, got %s", ttl)
	}

	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertWidgetRoundTrip(t, got, want)

	mr.FastForward(2 * time.Hour)
	if w, _ := store.Load(ctx, "s1"); w != nil {
		t.Error("expected the session to expire")
	}

	_ = store.Save(ctx, "s2", want)
	if err := store.Delete(ctx, "s2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists(sessionKeyPrefix + "s2") {
		t.Error("expected the session key to be removed")
	}
}

func TestRedisSessionStore_CorruptValueDropped(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	if err := mr.Set(sessionKeyPrefix+"bad", "{not json"); err != nil {
		t.Fatal(err)
	}
	store := NewRedisSessionStore(rdb, time.Hour)
	if w, err := store.Load(context.Background(), "bad"); err != nil || w != nil {
		t.Errorf("expected (nil, nil) for a corrupt session, got (%v, %v)", w, err)
	}
}

func TestRedisSessionStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	store := NewRedisSessionStore(rdb, time.Hour)
	if _, err := store.Load(context.Background(), "s1"); err == nil {
		t.Error("expected an error when redis is unreachable")
	}
}

// stepClock is a Clock the test can move.
type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func TestMemorySessionStore(t *testing.T) {
	clock := &stepClock{t: at(2024, time.November, 15, 12, 0)}
	store := NewMemorySessionStore(30*time.Minute, clock)
	ctx := context.Background()

	want := sampleWidget()
	if err := store.Save(ctx, "s1", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertWidgetRoundTrip(t, got, want)

	clock.t = clock.t.Add(31 * time.Minute)
	if w, _ := store.Load(ctx, "s1"); w != nil {
		t.Error("expected the session to expire")
	}

	_ = store.Save(ctx, "s2", want)
	_ = store.Delete(ctx, "s2")
	if w, _ := store.Load(ctx, "s2"); w != nil {
		t.Error("expected the session to be deleted")
	}
}
