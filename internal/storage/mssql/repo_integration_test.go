//go:build integration

package mssql

import (
	"context"
	"os"
	"testing"
	"time"

	"tablemigrate/internal/storage"
)

// getTestDSN reads the MSSQL_TEST_DSN environment variable.
// If it is empty, the caller should skip the test.
func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration tests")
	}
	return dsn
}

// TestCopyCountReadEraseIntegration round-trips a batch through a real SQL
// Server: CopyFrom, CountRows, ReadBatch and Erase.
func TestCopyCountReadEraseIntegration(t *testing.T) {
	dsn := getTestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn})
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	defer closeFn()

	const table = "dbo.tablemigrate_it"
	db := repo.DB()
	if _, err := db.ExecContext(ctx, "IF OBJECT_ID(N'"+table+"', N'U') IS NOT NULL DROP TABLE "+table); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := db.ExecContext(ctx, "CREATE TABLE "+table+" (id INT NOT NULL, name NVARCHAR(50) NULL)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	defer db.ExecContext(context.Background(), "DROP TABLE "+table)

	n, err := repo.CopyFrom(ctx, table, []string{"id", "name"}, [][]any{{1, "a"}, {2, nil}, {3, "c"}})
	if err != nil || n != 3 {
		t.Fatalf("CopyFrom() = %d, %v; want 3, nil", n, err)
	}

	total, err := repo.CountRows(ctx, table, "id > 1")
	if err != nil || total != 2 {
		t.Fatalf("CountRows() = %d, %v; want 2, nil", total, err)
	}

	b, err := repo.ReadBatch(ctx, storage.PageQuery{Table: table, OrderBy: "id", Offset: 1, Limit: 5})
	if err != nil || b.Len() != 2 {
		t.Fatalf("ReadBatch() len = %d, %v; want 2, nil", b.Len(), err)
	}

	erased, err := repo.Erase(ctx, table)
	if err != nil || erased != 3 {
		t.Fatalf("Erase() = %d, %v; want 3, nil", erased, err)
	}
}
