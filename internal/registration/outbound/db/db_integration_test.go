package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/enrollkit/enrollkit/internal/pkg/goerror"
	"github.com/enrollkit/enrollkit/internal/pkg/instrument"
	"github.com/enrollkit/enrollkit/internal/registration/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Integration tests against a real PostgreSQL. Skipped unless TEST_DATABASE_URL
// is set; the schema from db/schema.sql must already be applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	return NewDB(pool, instrument.NewNoop())
}

func testSession(contact string, now time.Time) entity.CreateOTPSession {
	return entity.CreateOTPSession{
		ID:        uuid.NewString(),
		Channel:   entity.ChannelEmail,
		Contact:   contact,
		CodeHash:  "aa:bb",
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}
}

func uniqueContact(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("%s@it.test", uuid.NewString())
}

func TestCreateOTPSessionExclusiveConflict(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	contact := uniqueContact(t)
	now := time.Now()

	if err := store.CreateOTPSessionExclusive(ctx, testSession(contact, now)); err != nil {
		t.Fatalf("first create: %v", err)
	}

	err := store.CreateOTPSessionExclusive(ctx, testSession(contact, now))
	if !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("second create err = %v, want ErrConflict", err)
	}
}

func TestCreateOTPSessionExclusiveAfterExpiry(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	contact := uniqueContact(t)
	now := time.Now()

	expired := testSession(contact, now.Add(-10*time.Minute))
	if err := store.CreateOTPSessionExclusive(ctx, expired); err != nil {
		t.Fatalf("expired create: %v", err)
	}

	if err := store.CreateOTPSessionExclusive(ctx, testSession(contact, now)); err != nil {
		t.Fatalf("create after expiry: %v", err)
	}
}

func TestGetActiveOTPSession(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	contact := uniqueContact(t)
	in := testSession(contact, time.Now())

	if err := store.CreateOTPSessionExclusive(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := store.GetActiveOTPSessionByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Contact != contact || byID.CodeHash != in.CodeHash || byID.Channel != entity.ChannelEmail {
		t.Fatalf("get by id = %+v", byID)
	}

	byContact, err := store.GetActiveOTPSessionByContact(ctx, contact)
	if err != nil {
		t.Fatalf("get by contact: %v", err)
	}
	if byContact.ID != in.ID {
		t.Fatalf("get by contact id = %s, want %s", byContact.ID, in.ID)
	}

	if _, err := store.GetActiveOTPSessionByID(ctx, uuid.NewString()); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("get unknown id err = %v, want ErrNotFound", err)
	}
}

func TestConsumeOTPSessionOnce(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	in := testSession(uniqueContact(t), time.Now())

	if err := store.CreateOTPSessionExclusive(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.ConsumeOTPSession(ctx, in.ID, time.Now()); err != nil {
		t.Fatalf("consume: %v", err)
	}

	if err := store.ConsumeOTPSession(ctx, in.ID, time.Now()); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("second consume err = %v, want ErrNotFound", err)
	}

	if _, err := store.GetActiveOTPSessionByID(ctx, in.ID); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("get consumed err = %v, want ErrNotFound", err)
	}
}
