package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()

	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSessionLifecycle(t *testing.T) {
	store := NewStore(testClient(t), false)
	ctx := context.Background()

	data := &Data{
		UserID:      uuid.New(),
		Email:       "session-test@example.com",
		DisplayName: "Session Test",
		Role:        "editor",
	}

	w := httptest.NewRecorder()
	id, err := store.Create(ctx, w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("Create returned empty session id")
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("Create did not set the session cookie")
	}

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(cookie)

	got, err := store.Get(ctx, r)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for a live session")
	}
	if got.Email != data.Email || got.TwoFADone {
		t.Errorf("Get = %+v, want email %q with 2FA pending", got, data.Email)
	}

	got.TwoFADone = true
	if err := store.Update(ctx, r, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, err := store.Get(ctx, r)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if updated == nil || !updated.TwoFADone {
		t.Errorf("Update did not persist TwoFADone, got %+v", updated)
	}

	w = httptest.NewRecorder()
	if err := store.Destroy(ctx, w, r); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	gone, err := store.Get(ctx, r)
	if err != nil {
		t.Fatalf("Get after destroy: %v", err)
	}
	if gone != nil {
		t.Errorf("session still readable after destroy: %+v", gone)
	}
}

func TestGetWithoutCookie(t *testing.T) {
	store := NewStore(testClient(t), false)

	got, err := store.Get(context.Background(), httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil session without cookie, got %+v", got)
	}
}
