package storage_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jonesrussell/tooldex/internal/storage"
)

func newClaimStore(t *testing.T) (*storage.ClaimStore, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return storage.NewClaimStore(db), mock, func() { _ = db.Close() }
}

func TestClaimStore_Get_NoRowReadsAsEmpty(t *testing.T) {
	store, mock, cleanup := newClaimStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT claims FROM user_claims").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"claims"}))

	claims, err := store.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("expected empty claims, got %v", claims)
	}
}

func TestClaimStore_Get_DecodesObject(t *testing.T) {
	store, mock, cleanup := newClaimStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT claims FROM user_claims").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"claims"}).
			AddRow([]byte(`{"admin":true,"beta":true}`)))

	claims, err := store.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if v, ok := claims["admin"].(bool); !ok || !v {
		t.Errorf("expected admin=true, got %v", claims["admin"])
	}
	if v, ok := claims["beta"].(bool); !ok || !v {
		t.Errorf("expected beta=true, got %v", claims["beta"])
	}
}

func TestClaimStore_Merge_PreservesExistingKeys(t *testing.T) {
	store, mock, cleanup := newClaimStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT claims FROM user_claims").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"claims"}).
			AddRow([]byte(`{"beta":true,"plan":"pro"}`)))
	// Go sorts map keys when marshaling, so the merged blob is deterministic.
	mock.ExpectExec("INSERT INTO user_claims").
		WithArgs("u1", []byte(`{"admin":true,"beta":true,"plan":"pro"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.Merge(context.Background(), "u1", "admin", true); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestClaimStore_Merge_NewIdentity(t *testing.T) {
	store, mock, cleanup := newClaimStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT claims FROM user_claims").
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows([]string{"claims"}))
	mock.ExpectExec("INSERT INTO user_claims").
		WithArgs("u2", []byte(`{"admin":true}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.Merge(context.Background(), "u2", "admin", true); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
