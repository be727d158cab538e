// Package testutil provides test helpers shared across packages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/service"
	"github.com/Veraticus/proposal-desk/internal/storage"
)

// TestDB is a migrated in-memory database closed when the test ends.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// Seed describes the rows written before the test runs.
type Seed struct {
	Users   []model.User
	Catalog []service.CatalogRow
}

// SetupTestDB creates an in-memory database and writes seed into it.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.Seed{
//		Users: []model.User{{Login: "ana", Profile: model.ProfileManager}},
//	})
func SetupTestDB(t *testing.T, seed Seed) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for i := range seed.Users {
		if err := store.SaveUser(ctx, &seed.Users[i]); err != nil {
			t.Fatalf("failed to seed user %q: %v", seed.Users[i].Login, err)
		}
	}
	if len(seed.Catalog) > 0 {
		if err := store.ReplaceCatalog(ctx, seed.Catalog, nil); err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// SaveRecord writes a concluded proposal and fails the test on error.
func (db *TestDB) SaveRecord(sub model.Submission) *model.Record {
	db.t.Helper()

	rec, err := db.Storage.CreateAndFinalize(context.Background(), sub)
	if err != nil {
		db.t.Fatalf("failed to save record %q: %v", sub.Number, err)
	}
	return rec
}

// SampleCatalog is a small catalog spanning two regions.
func SampleCatalog() []service.CatalogRow {
	return []service.CatalogRow{
		{Region: "Norte", Agreement: "GOV-AM", Product: "Consignado", Status: "Ativo"},
		{Region: "Norte", Agreement: "GOV-AM", Product: "Cartão", Status: "Suspenso"},
		{Region: "Sul", Agreement: "GOV-RS", Product: "Consignado", Status: "Ativo"},
	}
}
