package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teghlab/otp-lab/internal/domain"
	"github.com/teghlab/otp-lab/internal/repository/sqlite"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestOTPRepo(t *testing.T) (*sqlite.OTPRepository, *fakeClock) {
	t.Helper()
	db := newTestDB(t)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	repo := db.OTPs()
	repo.SetClock(clock.Now)
	return repo, clock
}

func TestOTPRepository_CreateAndFind(t *testing.T) {
	repo, clock := newTestOTPRepo(t)
	ctx := context.Background()

	otp := &domain.OTP{Email: "a@example.com", Code: "123456"}
	if err := repo.Create(ctx, otp); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !otp.ExpiresAt.Equal(clock.Now().Add(domain.OTPTTL)) {
		t.Fatalf("expected expiry at creation + ttl, got %v", otp.ExpiresAt)
	}

	found, err := repo.FindByEmailAndCode(ctx, "a@example.com", "123456")
	if err != nil {
		t.Fatalf("FindByEmailAndCode: %v", err)
	}
	if found.Code != "123456" || found.Email != "a@example.com" {
		t.Fatalf("unexpected otp %+v", found)
	}

	_, err = repo.FindByEmailAndCode(ctx, "a@example.com", "654321")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong code, got %v", err)
	}
	_, err = repo.FindByEmailAndCode(ctx, "b@example.com", "123456")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong email, got %v", err)
	}
}

func TestOTPRepository_ExpiredIsUnreadable(t *testing.T) {
	repo, clock := newTestOTPRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.OTP{Email: "a@example.com", Code: "111111"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	clock.Advance(domain.OTPTTL - time.Millisecond)
	if _, err := repo.FindByEmailAndCode(ctx, "a@example.com", "111111"); err != nil {
		t.Fatalf("expected code valid just before expiry: %v", err)
	}

	clock.Advance(time.Millisecond)
	if _, err := repo.FindByEmailAndCode(ctx, "a@example.com", "111111"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound at expiry, got %v", err)
	}
	if _, err := repo.FindLatestByEmail(ctx, "a@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected FindLatestByEmail ErrNotFound at expiry, got %v", err)
	}
	otps, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(otps) != 0 {
		t.Fatalf("expected no listed otps, got %d", len(otps))
	}
}

func TestOTPRepository_DeleteByEmail(t *testing.T) {
	repo, _ := newTestOTPRepo(t)
	ctx := context.Background()

	for _, o := range []domain.OTP{
		{Email: "a@example.com", Code: "111111"},
		{Email: "a@example.com", Code: "222222"},
		{Email: "b@example.com", Code: "333333"},
	} {
		if err := repo.Create(ctx, &o); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := repo.DeleteByEmail(ctx, "a@example.com"); err != nil {
		t.Fatalf("DeleteByEmail: %v", err)
	}

	otps, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(otps) != 1 || otps[0].Email != "b@example.com" {
		t.Fatalf("expected only b@example.com to remain, got %+v", otps)
	}
}

func TestOTPRepository_FindLatestByEmail(t *testing.T) {
	repo, clock := newTestOTPRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.OTP{Email: "a@example.com", Code: "111111"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	clock.Advance(time.Second)
	if err := repo.Create(ctx, &domain.OTP{Email: "a@example.com", Code: "222222"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	latest, err := repo.FindLatestByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("FindLatestByEmail: %v", err)
	}
	if latest.Code != "222222" {
		t.Fatalf("expected newest code, got %s", latest.Code)
	}
}

func TestOTPRepository_Sweep(t *testing.T) {
	repo, clock := newTestOTPRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.OTP{Email: "old@example.com", Code: "111111"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	clock.Advance(domain.OTPTTL)
	if err := repo.Create(ctx, &domain.OTP{Email: "new@example.com", Code: "222222"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := repo.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 swept row, got %d", n)
	}

	var remaining int
	if err := repo.CountRows(&remaining); err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("expected 1 remaining row, got %d", remaining)
	}
}

func TestOTPRepository_RunSweeperStopsOnCancel(t *testing.T) {
	repo, _ := newTestOTPRepo(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		repo.RunSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunSweeper did not return after cancel")
	}
}
