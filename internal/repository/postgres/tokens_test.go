package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/adlytica/toolkit/internal/reset"
	"github.com/adlytica/toolkit/internal/testutil"
)

func TestTokenRepositoryRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTokenRepository(db)

	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := reset.TokenRecord{
		TokenID:      "tok-1",
		TenantID:     "acme",
		Mode:         reset.ModeHard,
		IssuedAt:     issued,
		ExpiresAt:    issued.Add(reset.TokenTTL),
		TokenHashHex: "abc123",
	}
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want record")
	}
	if got.TenantID != "acme" || got.Mode != reset.ModeHard || got.TokenHashHex != "abc123" {
		t.Errorf("record = %+v, want original fields back", got)
	}
	if !got.IssuedAt.Equal(issued) || !got.ExpiresAt.Equal(issued.Add(reset.TokenTTL)) {
		t.Errorf("timestamps = %v / %v, want %v / %v",
			got.IssuedAt, got.ExpiresAt, issued, issued.Add(reset.TokenTTL))
	}
	if got.ConsumedAt != nil {
		t.Errorf("ConsumedAt = %v, want nil", got.ConsumedAt)
	}

	missing, err := repo.Get(context.Background(), "tok-unknown")
	if err != nil {
		t.Fatalf("Get() unknown id error = %v", err)
	}
	if missing != nil {
		t.Errorf("Get() unknown id = %+v, want nil", missing)
	}
}

func TestTokenRepositoryMarkConsumed(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTokenRepository(db)

	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := reset.TokenRecord{
		TokenID:      "tok-1",
		TenantID:     "acme",
		Mode:         reset.ModeHard,
		IssuedAt:     issued,
		ExpiresAt:    issued.Add(reset.TokenTTL),
		TokenHashHex: "abc123",
	}
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	ok, err := repo.MarkConsumed(context.Background(), "tok-1", issued.Add(time.Minute))
	if err != nil || !ok {
		t.Fatalf("MarkConsumed() = %v, %v, want true, nil", ok, err)
	}

	got, err := repo.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ConsumedAt == nil || !got.ConsumedAt.Equal(issued.Add(time.Minute)) {
		t.Errorf("ConsumedAt = %v, want %v", got.ConsumedAt, issued.Add(time.Minute))
	}

	// A second consume loses the conditional update
	ok, err = repo.MarkConsumed(context.Background(), "tok-1", issued.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("second MarkConsumed() error = %v", err)
	}
	if ok {
		t.Error("second MarkConsumed() = true, want false")
	}
}

func TestTokenRepositoryDeleteStale(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTokenRepository(db)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, rec := range []reset.TokenRecord{
		{TokenID: "live", TenantID: "acme", Mode: reset.ModeHard,
			IssuedAt: base, ExpiresAt: base.Add(reset.TokenTTL), TokenHashHex: "h1"},
		{TokenID: "expired", TenantID: "acme", Mode: reset.ModeHard,
			IssuedAt: base.Add(-time.Hour), ExpiresAt: base.Add(-time.Hour + reset.TokenTTL), TokenHashHex: "h2"},
		{TokenID: "consumed", TenantID: "acme", Mode: reset.ModeHard,
			IssuedAt: base, ExpiresAt: base.Add(reset.TokenTTL), TokenHashHex: "h3"},
	} {
		if err := repo.Insert(context.Background(), rec); err != nil {
			t.Fatalf("Insert(%s) error = %v", rec.TokenID, err)
		}
	}
	if ok, err := repo.MarkConsumed(context.Background(), "consumed", base); err != nil || !ok {
		t.Fatalf("MarkConsumed() = %v, %v", ok, err)
	}

	removed, err := repo.DeleteStale(context.Background(), base)
	if err != nil {
		t.Fatalf("DeleteStale() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("DeleteStale() = %d, want 2", removed)
	}

	live, err := repo.Get(context.Background(), "live")
	if err != nil || live == nil {
		t.Fatalf("Get(live) = %+v, %v, want the unexpired record", live, err)
	}
}

func TestTokenLifecycleAcrossProcesses(t *testing.T) {
	// token issue and reset-hard are separate CLI processes over one
	// database; each gets its own repository and store
	db := testutil.NewTestDB(t)

	issuer := reset.NewTokenStore(NewTokenRepository(db))
	consumer := reset.NewTokenStore(NewTokenRepository(db))

	issued, err := issuer.Generate(context.Background(), "acme", reset.ModeHard)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if appErr := consumer.Consume(context.Background(), issued.Token, "acme", reset.ModeHard, time.Now().UTC()); appErr != nil {
		t.Fatalf("Consume() in a separate store error = %v", appErr)
	}

	// Replay through either store must fail
	if appErr := consumer.Consume(context.Background(), issued.Token, "acme", reset.ModeHard, time.Now().UTC()); appErr == nil {
		t.Fatal("replayed Consume() succeeded")
	}
	if appErr := issuer.Consume(context.Background(), issued.Token, "acme", reset.ModeHard, time.Now().UTC()); appErr == nil {
		t.Fatal("replayed Consume() through the issuing store succeeded")
	}
}
