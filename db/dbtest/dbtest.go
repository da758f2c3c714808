// Package dbtest builds a migrated, seeded Repo on in-memory SQLite.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"invensys/clock"
	"invensys/db"
	"invensys/lifecycle"
	"invensys/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Epoch is the fixed clock's starting point. Whole seconds keep SQLite
// round-trips exact.
var Epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// New opens a private in-memory database. A single connection keeps every
// query on the same database.
func New(t testing.TB, strict bool) (*db.Repo, *clock.Fixed) {
	t.Helper()

	cfg := db.GormConfig()
	cfg.Logger = gormlogger.Discard
	conn, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	if err := db.Migrate(conn, strict); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.SeedStatuses(ctx, conn); err != nil {
		t.Fatalf("seed statuses: %v", err)
	}
	vocab, err := db.LoadVocabulary(ctx, conn)
	if err != nil {
		t.Fatalf("load vocabulary: %v", err)
	}

	clk := clock.NewFixed(Epoch)
	return db.NewRepo(conn, vocab, lifecycle.PolicyFor(strict), clk, zap.NewNop()), clk
}

// Laptop creates an Available laptop with the given serial.
func Laptop(t testing.TB, r *db.Repo, serial string) *models.Laptop {
	t.Helper()
	lp, err := r.CreateLaptop(context.Background(), "", db.CreateLaptopInput{
		Brand:        "Dell",
		Model:        "Latitude 5440",
		SerialNumber: serial,
		Name:         "lt-" + serial,
		AssetTag:     "TAG-" + serial,
	})
	if err != nil {
		t.Fatalf("create laptop %s: %v", serial, err)
	}
	return lp
}

// User creates an active, non-admin user.
func User(t testing.TB, r *db.Repo, username string) *models.User {
	t.Helper()
	u, err := r.CreateUser(context.Background(), db.CreateUserInput{
		FirstName: "Test",
		LastName:  username,
		Username:  username,
		Email:     fmt.Sprintf("%s@example.com", username),
		Password:  "secret-password",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// Allocate allocates lp to u with admin as the allocating actor.
func Allocate(t testing.TB, r *db.Repo, lp *models.Laptop, u, admin *models.User) *models.Allocation {
	t.Helper()
	rec, err := r.CreateAllocation(context.Background(), db.CreateAllocationInput{
		LaptopID:    lp.ID,
		UserID:      u.ID,
		AllocatorID: admin.ID,
		Condition:   "good",
		Reason:      "new hire",
	})
	if err != nil {
		t.Fatalf("allocate %s to %s: %v", lp.SerialNumber, u.Username, err)
	}
	return rec
}

// Purchase records a procurement entry for lp.
func Purchase(t testing.TB, r *db.Repo, actor db.Actor, lp *models.Laptop, po, vendor string) *models.Procurement {
	t.Helper()
	rec, err := r.CreatePurchase(context.Background(), actor, db.CreatePurchaseInput{
		LaptopID:       lp.ID,
		PurchaseDate:   Epoch.AddDate(0, -1, 0),
		PurchaseOrder:  po,
		Vendor:         vendor,
		WarrantyExpiry: Epoch.AddDate(3, 0, 0),
		Cost:           decimal.RequireFromString("1299.99"),
	})
	if err != nil {
		t.Fatalf("create purchase %s: %v", po, err)
	}
	return rec
}
