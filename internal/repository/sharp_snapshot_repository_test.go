package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"mispricing-detector/internal/models"
)

func TestSharpSnapshotRepositoryInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	s := models.SharpSnapshot{
		ID:                 "snap-1",
		EventKey:           "chicago blackhawks::yes",
		EventName:          "Chicago Blackhawks vs Detroit Red Wings",
		Outcome:            "Chicago Blackhawks",
		Bookmaker:          "pinnacle",
		ImpliedProbability: 0.55,
		RawOdds:            1.8,
		CapturedAt:         time.Now(),
	}

	mock.ExpectExec(`INSERT INTO sharp_snapshot`).
		WithArgs(s.ID, s.EventKey, s.EventName, s.Outcome, s.Bookmaker, s.ImpliedProbability, s.RawOdds, s.CapturedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSharpSnapshotRepository(db)
	if err := repo.Insert(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSharpSnapshotRepositoryLoadSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	since := now.Add(-30 * time.Minute)

	rows := sqlmock.NewRows([]string{
		"id", "event_key", "event_name", "outcome", "bookmaker",
		"implied_probability", "raw_odds", "captured_at",
	}).
		AddRow("snap-1", "key", "A vs B", "A", "pinnacle", 0.5, 2.0, now.Add(-20*time.Minute)).
		AddRow("snap-2", "key", "A vs B", "A", "pinnacle", 0.55, 1.8, now.Add(-5*time.Minute))

	mock.ExpectQuery(`SELECT (.+) FROM sharp_snapshot`).
		WithArgs("key", "A", since).
		WillReturnRows(rows)

	repo := NewSharpSnapshotRepository(db)
	out, err := repo.LoadSince(context.Background(), "key", "A", since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(out))
	}
	if out[0].Bookmaker != "pinnacle" || out[1].ImpliedProbability != 0.55 {
		t.Errorf("unexpected scan result: %+v", out)
	}
}

func TestSharpSnapshotRepositoryDeleteOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	bound := time.Now().Add(-24 * time.Hour)
	mock.ExpectExec(`DELETE FROM sharp_snapshot`).
		WithArgs(bound).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewSharpSnapshotRepository(db)
	n, err := repo.DeleteOlderThan(context.Background(), bound)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows deleted, got %d", n)
	}
}
