package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Satyam216/todo-collab/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dataStore, err := store.NewSQLiteStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(dataStore.Close)

	broker := NewBroker(nil, zerolog.Nop())
	return NewService(dataStore, NewMemorySessions(), broker, "test-secret", time.Hour, zerolog.Nop())
}

func TestSignInVerifyRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.SignIn(ctx, "Satyam", "satyam@example.com")
	if err != nil {
		t.Fatalf("sign-in: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a session token")
	}
	if session.User == nil || session.User.Email != "satyam@example.com" {
		t.Fatalf("unexpected user: %+v", session.User)
	}

	ident, err := svc.Verify(ctx, session.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ident.UserID != session.User.ID {
		t.Fatalf("identity user mismatch: %s != %s", ident.UserID, session.User.ID)
	}
	if ident.Name != "Satyam" {
		t.Fatalf("expected name claim, got %q", ident.Name)
	}
}

func TestSignInBlankEmail(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SignIn(context.Background(), "Nobody", "  "); !errors.Is(err, ErrSignInFailed) {
		t.Fatalf("expected ErrSignInFailed, got %v", err)
	}
}

func TestSignOutRevokesSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.SignIn(ctx, "", "user@example.com")
	if err != nil {
		t.Fatalf("sign-in: %v", err)
	}
	ident, err := svc.Verify(ctx, session.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := svc.SignOut(ctx, *ident); err != nil {
		t.Fatalf("sign-out: %v", err)
	}

	// The token itself is unexpired but the session is gone.
	if _, err := svc.Verify(ctx, session.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after sign-out, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t)

	token, err := issueToken([]byte("other-secret"), "2a3e0c4f-0000-0000-0000-000000000000", "sid", "", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestBrokerPublishesTransitions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var mu sync.Mutex
	var events []Event
	unsubscribe := svc.Broker().Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	defer unsubscribe()

	session, err := svc.SignIn(ctx, "", "observer@example.com")
	if err != nil {
		t.Fatalf("sign-in: %v", err)
	}
	ident, err := svc.Verify(ctx, session.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.SignOut(ctx, *ident); err != nil {
		t.Fatalf("sign-out: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventSignedIn || events[1].Type != EventSignedOut {
		t.Fatalf("unexpected event order: %+v", events)
	}
	if events[1].SessionID != ident.SessionID {
		t.Fatalf("sign-out event carries wrong session: %s", events[1].SessionID)
	}
}

func TestBrokerUnsubscribeStopsDelivery(t *testing.T) {
	broker := NewBroker(nil, zerolog.Nop())

	calls := 0
	unsubscribe := broker.Subscribe(func(Event) { calls++ })

	broker.Publish(context.Background(), Event{Type: EventSignedIn})
	unsubscribe()
	broker.Publish(context.Background(), Event{Type: EventSignedOut})

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestBrokerDropsOwnRemoteEcho(t *testing.T) {
	broker := NewBroker(nil, zerolog.Nop())

	calls := 0
	broker.Subscribe(func(Event) { calls++ })

	// An event that round-tripped through the bus carries our origin
	// and must not be dispatched twice.
	broker.DispatchRemote([]byte(`{"type":"signed_out","session_id":"s","origin":"` + broker.origin + `"}`))
	if calls != 0 {
		t.Fatal("broker dispatched its own echo")
	}

	broker.DispatchRemote([]byte(`{"type":"signed_out","session_id":"s","origin":"elsewhere"}`))
	if calls != 1 {
		t.Fatalf("expected remote event to dispatch, got %d calls", calls)
	}
}

func TestMemorySessionsExpiry(t *testing.T) {
	sessions := NewMemorySessions()
	ctx := context.Background()

	if err := sessions.TrackSession(ctx, "short", time.Millisecond); err != nil {
		t.Fatalf("track: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	active, err := sessions.IsSessionActive(ctx, "short")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if active {
		t.Fatal("expired session reported active")
	}
}
