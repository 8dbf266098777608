package transactions

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avoropay/finsync/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreateOrUpdate_Upsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+transactions\b.*ON\s+CONFLICT\s*\(user_id,\s*id\)`
	mock.ExpectExec(q).
		WithArgs("t1", "u1", 10.0, "food", "2026-09-01", "lunch", false, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateOrUpdate(context.Background(), &models.Transaction{
		ID: "t1", UserID: "u1", Amount: 10, Category: "food",
		Date: "2026-09-01", Memo: "lunch", Version: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateOrUpdate_SameIDDifferentUsers(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+transactions\b.*ON\s+CONFLICT\s*\(user_id,\s*id\)`
	mock.ExpectExec(q).
		WithArgs("t1", "u1", 10.0, "", "", "", false, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs("t1", "u2", 20.0, "", "", "", false, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.CreateOrUpdate(context.Background(), &models.Transaction{
		ID: "t1", UserID: "u1", Amount: 10, Version: 1,
	}); err != nil {
		t.Fatalf("unexpected error for first user: %v", err)
	}
	if err := repo.CreateOrUpdate(context.Background(), &models.Transaction{
		ID: "t1", UserID: "u2", Amount: 20, Version: 1,
	}); err != nil {
		t.Fatalf("unexpected error for second user: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSelectUpdated_IncludesTombstones(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+.*FROM\s+transactions\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+version\s*>\s*\$2`
	rows := sqlmock.NewRows([]string{"id", "user_id", "amount", "category", "tx_date", "memo", "deleted", "version"}).
		AddRow("t1", "u1", 10.0, "food", "2026-09-01", "", false, int64(1)).
		AddRow("t2", "u1", 0.0, "", "", "", true, int64(2))
	mock.ExpectQuery(q).WithArgs("u1", int64(0)).WillReturnRows(rows)

	got, err := repo.SelectUpdated(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if !got[1].Deleted {
		t.Fatal("tombstone flag lost")
	}
}

func TestSumByCategory(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+COALESCE\(SUM\(amount\),\s*0\)\s+FROM\s+transactions`
	rows := sqlmock.NewRows([]string{"sum"}).AddRow(130.5)
	mock.ExpectQuery(q).WithArgs("u1", "food", "2026-09").WillReturnRows(rows)

	sum, err := repo.SumByCategory(context.Background(), "u1", "food", 2026, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 130.5 {
		t.Fatalf("expected 130.5, got %v", sum)
	}
}
