package kv

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	pgSelectQuery    = `(?s)^SELECT\s+value\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1$`
	pgSelectForQuery = `(?s)^SELECT\s+value\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1\s+FOR\s+UPDATE$`
	pgUpsertQuery    = `(?s)^INSERT\s+INTO\s+kv\s*\(key,\s*value,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*now\(\)\)\s*ON\s+CONFLICT\s*\(key\)\s*DO\s+UPDATE\s+SET\s+value\s*=\s*EXCLUDED\.value,\s*updated_at\s*=\s*now\(\)\s*$`
	pgDeleteQuery    = `(?s)^DELETE\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1$`
	pgLockQuery      = `(?s)^SELECT\s+pg_advisory_xact_lock\(hashtext\(\$1\)\)$`
)

func newPostgresWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestPostgresGet_Found(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgSelectQuery).
		WithArgs("auth_master_db").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	got, err := repo.Get(context.Background(), "auth_master_db")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("unexpected value: %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresGet_Absent(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgSelectQuery).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), "ghost")
	if err != nil || got != nil {
		t.Fatalf("want (nil, nil), got (%v, %v)", got, err)
	}
}

func TestPostgresGet_DBError(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(pgSelectQuery).
		WithArgs("k").
		WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "k")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresSet(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(pgUpsertQuery).
		WithArgs("k", []byte("v")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresDelete(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(pgDeleteQuery).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestPostgresDelete_DBError(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(pgDeleteQuery).
		WithArgs("k").
		WillReturnError(errors.New("db err"))

	err := repo.Delete(context.Background(), "k")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresUpdate_Commits(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(pgLockQuery).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(pgSelectForQuery).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("old")))
	mock.ExpectExec(pgUpsertQuery).
		WithArgs("k", []byte("old+new")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), "k", func(current []byte) ([]byte, error) {
		return append(current, []byte("+new")...), nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresUpdate_AbsentKey(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(pgLockQuery).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(pgSelectForQuery).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec(pgUpsertQuery).
		WithArgs("k", []byte("first")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), "k", func(current []byte) ([]byte, error) {
		if current != nil {
			t.Fatalf("expected nil current, got %q", current)
		}
		return []byte("first"), nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestPostgresUpdate_RollsBackOnFnError(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(pgLockQuery).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(pgSelectForQuery).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("old")))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), "k", func(current []byte) ([]byte, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresUpdate_LockError(t *testing.T) {
	repo, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(pgLockQuery).
		WithArgs("k").
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	called := false
	err := repo.Update(context.Background(), "k", func(current []byte) ([]byte, error) {
		called = true
		return current, nil
	})
	if err == nil || !regexp.MustCompile(`db error: .*lock timeout`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if called {
		t.Fatal("update func ran without the key lock")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
