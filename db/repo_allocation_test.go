package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"invensys/db"
	"invensys/db/dbtest"
	"invensys/lifecycle"
	"invensys/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func statusOf(t *testing.T, r *db.Repo, laptopID string) lifecycle.Status {
	t.Helper()
	lp, err := r.GetLaptop(context.Background(), laptopID)
	if err != nil {
		t.Fatalf("GetLaptop: %v", err)
	}
	s, err := r.Vocab.Status(lp.StatusID)
	if err != nil {
		t.Fatalf("status id %d: %v", lp.StatusID, err)
	}
	return s
}

// assertAgreement checks that the laptop is Allocated exactly when one active
// allocation references it.
func assertAgreement(t *testing.T, r *db.Repo, laptopID string) {
	t.Helper()
	n, err := r.CountActiveAllocations(context.Background(), laptopID)
	if err != nil {
		t.Fatalf("CountActiveAllocations: %v", err)
	}
	s := statusOf(t, r, laptopID)
	if (s == lifecycle.Allocated) != (n == 1) {
		t.Fatalf("status %s with %d active allocations", s, n)
	}
}

func TestCreateAllocationFlipsStatus(t *testing.T) {
	r, _ := dbtest.New(t, false)
	admin := dbtest.User(t, r, "admin1")
	u := dbtest.User(t, r, "alice")
	lp := dbtest.Laptop(t, r, "SN-001")

	if s := statusOf(t, r, lp.ID); s != lifecycle.Available {
		t.Fatalf("new laptop status = %s, want Available", s)
	}
	rec := dbtest.Allocate(t, r, lp, u, admin)

	if !rec.IsActive {
		t.Fatal("allocation should be active")
	}
	if !rec.AllocationDate.Equal(dbtest.Epoch) {
		t.Errorf("AllocationDate = %v, want clock time %v", rec.AllocationDate, dbtest.Epoch)
	}
	if rec.User == nil || rec.User.Username != "alice" {
		t.Errorf("User not preloaded: %+v", rec.User)
	}
	if rec.Laptop == nil || rec.Laptop.Status == nil || rec.Laptop.Status.Name != string(lifecycle.Allocated) {
		t.Errorf("Laptop.Status not preloaded as Allocated: %+v", rec.Laptop)
	}
	assertAgreement(t, r, lp.ID)
}

func TestCreateAllocationNotFound(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()
	admin := dbtest.User(t, r, "admin1")
	lp := dbtest.Laptop(t, r, "SN-001")

	_, err := r.CreateAllocation(ctx, db.CreateAllocationInput{LaptopID: "missing", UserID: admin.ID, AllocatorID: admin.ID})
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing laptop: err = %v, want ErrNotFound", err)
	}
	_, err = r.CreateAllocation(ctx, db.CreateAllocationInput{LaptopID: lp.ID, UserID: "missing", AllocatorID: admin.ID})
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing user: err = %v, want ErrNotFound", err)
	}
	// nothing half-applied
	if s := statusOf(t, r, lp.ID); s != lifecycle.Available {
		t.Fatalf("status = %s after failed allocation", s)
	}
}

func TestPermissiveAllowsDoubleBooking(t *testing.T) {
	r, _ := dbtest.New(t, false)
	admin := dbtest.User(t, r, "admin1")
	lp := dbtest.Laptop(t, r, "SN-001")

	dbtest.Allocate(t, r, lp, dbtest.User(t, r, "alice"), admin)
	dbtest.Allocate(t, r, lp, dbtest.User(t, r, "bob"), admin)

	n, err := r.CountActiveAllocations(context.Background(), lp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("active allocations = %d, want 2 under the permissive policy", n)
	}
}

func TestStrictRejectsDoubleBooking(t *testing.T) {
	r, _ := dbtest.New(t, true)
	ctx := context.Background()
	admin := dbtest.User(t, r, "admin1")
	bob := dbtest.User(t, r, "bob")
	lp := dbtest.Laptop(t, r, "SN-001")
	dbtest.Allocate(t, r, lp, dbtest.User(t, r, "alice"), admin)

	_, err := r.CreateAllocation(ctx, db.CreateAllocationInput{LaptopID: lp.ID, UserID: bob.ID, AllocatorID: admin.ID})
	if !errors.Is(err, db.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	n, _ := r.CountActiveAllocations(ctx, lp.ID)
	if n != 1 {
		t.Fatalf("active allocations = %d, want 1", n)
	}
	assertAgreement(t, r, lp.ID)
}

func TestReturnLaptop(t *testing.T) {
	r, clk := dbtest.New(t, false)
	ctx := context.Background()
	admin := dbtest.User(t, r, "admin1")
	lp := dbtest.Laptop(t, r, "SN-001")
	rec := dbtest.Allocate(t, r, lp, dbtest.User(t, r, "alice"), admin)

	clk.Advance(72 * time.Hour)
	got, err := r.ReturnLaptop(ctx, db.ReturnLaptopInput{
		AllocationID:      rec.ID,
		Comment:           "end of contract",
		ConditionOnReturn: "scratched lid",
		ReturnerID:        admin.ID,
	})
	if err != nil {
		t.Fatalf("ReturnLaptop: %v", err)
	}
	if got.IsActive {
		t.Fatal("allocation still active after return")
	}
	if got.ReturnDate == nil || !got.ReturnDate.Equal(dbtest.Epoch.Add(72*time.Hour)) {
		t.Errorf("ReturnDate = %v", got.ReturnDate)
	}
	if got.ReturnedBy == nil || *got.ReturnedBy != admin.ID {
		t.Errorf("ReturnedBy = %v", got.ReturnedBy)
	}
	if got.ConditionOnReturn != "scratched lid" || got.ReturnComment != "end of contract" {
		t.Errorf("return fields not stored: %+v", got)
	}
	if s := statusOf(t, r, lp.ID); s != lifecycle.Available {
		t.Fatalf("status = %s, want Available", s)
	}
	assertAgreement(t, r, lp.ID)
}

func TestReturnLaptopIsIdempotent(t *testing.T) {
	r, clk := dbtest.New(t, false)
	ctx := context.Background()
	admin := dbtest.User(t, r, "admin1")
	lp := dbtest.Laptop(t, r, "SN-001")
	rec := dbtest.Allocate(t, r, lp, dbtest.User(t, r, "alice"), admin)

	first, err := r.ReturnLaptop(ctx, db.ReturnLaptopInput{AllocationID: rec.ID, ReturnerID: admin.ID, Comment: "first"})
	if err != nil {
		t.Fatal(err)
	}

	// the laptop moves on before the duplicate return arrives
	if _, err := r.ChangeLaptopStatus(ctx, admin.ID, lp.ID, mustID(t, r, lifecycle.UnderRepair)); err != nil {
		t.Fatal(err)
	}
	clk.Advance(time.Hour)
	second, err := r.ReturnLaptop(ctx, db.ReturnLaptopInput{AllocationID: rec.ID, ReturnerID: admin.ID, Comment: "second"})
	if err != nil {
		t.Fatalf("second return: %v", err)
	}
	if second.IsActive {
		t.Fatal("second return reactivated the allocation")
	}
	if second.ReturnComment != "first" || !second.ReturnDate.Equal(*first.ReturnDate) {
		t.Errorf("second return overwrote fields: %+v", second)
	}
	if s := statusOf(t, r, lp.ID); s != lifecycle.UnderRepair {
		t.Errorf("status = %s, second return must not touch it", s)
	}
}

func TestReturnLaptopNotFound(t *testing.T) {
	r, _ := dbtest.New(t, false)
	_, err := r.ReturnLaptop(context.Background(), db.ReturnLaptopInput{AllocationID: "nope"})
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReallocationCreatesNewRecord(t *testing.T) {
	r, _ := dbtest.New(t, true)
	ctx := context.Background()
	admin := dbtest.User(t, r, "admin1")
	lp := dbtest.Laptop(t, r, "SN-001")
	first := dbtest.Allocate(t, r, lp, dbtest.User(t, r, "alice"), admin)
	if _, err := r.ReturnLaptop(ctx, db.ReturnLaptopInput{AllocationID: first.ID, ReturnerID: admin.ID}); err != nil {
		t.Fatal(err)
	}
	second := dbtest.Allocate(t, r, lp, dbtest.User(t, r, "bob"), admin)
	if second.ID == first.ID {
		t.Fatal("reallocation reused the returned record")
	}
	old, err := r.ShowAllocation(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if old.IsActive {
		t.Fatal("returned record became active again")
	}
	assertAgreement(t, r, lp.ID)
}

func TestListAllocationsFilters(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()
	admin := dbtest.User(t, r, "admin1")
	alice := dbtest.User(t, r, "alice")
	bob := dbtest.User(t, r, "bob")
	lp1 := dbtest.Laptop(t, r, "SN-001")
	lp2 := dbtest.Laptop(t, r, "SN-002")

	a1 := dbtest.Allocate(t, r, lp1, alice, admin)
	dbtest.Allocate(t, r, lp2, bob, admin)
	if _, err := r.ReturnLaptop(ctx, db.ReturnLaptopInput{AllocationID: a1.ID, ReturnerID: admin.ID}); err != nil {
		t.Fatal(err)
	}
	dbtest.Allocate(t, r, lp1, bob, admin)

	active, inactive := true, false
	tests := []struct {
		name   string
		filter db.AllocationFilter
		want   int
	}{
		{"all", db.AllocationFilter{}, 3},
		{"active", db.AllocationFilter{IsActive: &active}, 2},
		{"inactive", db.AllocationFilter{IsActive: &inactive}, 1},
		{"by user", db.AllocationFilter{Username: "BOB"}, 2},
		{"by serial", db.AllocationFilter{SerialNumber: "SN-001"}, 2},
		{"user and serial", db.AllocationFilter{Username: "alice", SerialNumber: "SN-001"}, 1},
		{"all three", db.AllocationFilter{Username: "alice", SerialNumber: "SN-001", IsActive: &active}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ListAllocations(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d allocations, want %d", len(got), tt.want)
			}
		})
	}
}

func TestAttachReturnFormGate(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()
	admin := dbtest.User(t, r, "admin1")
	lp := dbtest.Laptop(t, r, "SN-001")
	rec := dbtest.Allocate(t, r, lp, dbtest.User(t, r, "alice"), admin)

	if err := r.AttachReturnForm(ctx, rec.ID, "return_forms/x.pdf"); !errors.Is(err, db.ErrForbidden) {
		t.Fatalf("active allocation: err = %v, want ErrForbidden", err)
	}
	if _, err := r.ReturnLaptop(ctx, db.ReturnLaptopInput{AllocationID: rec.ID, ReturnerID: admin.ID}); err != nil {
		t.Fatal(err)
	}
	if err := r.AttachReturnForm(ctx, rec.ID, "return_forms/x.pdf"); err != nil {
		t.Fatalf("returned allocation: %v", err)
	}
	got, _ := r.ShowAllocation(ctx, rec.ID)
	if got.ReturnForm != "return_forms/x.pdf" {
		t.Fatalf("ReturnForm = %q", got.ReturnForm)
	}
	if err := r.AttachAllocationForm(ctx, "missing", "k"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing allocation: err = %v, want ErrNotFound", err)
	}
}

func TestCheckReturnFormGeneration(t *testing.T) {
	for _, active := range []bool{true, false} {
		err := db.CheckReturnFormGeneration(&models.Allocation{IsActive: active})
		if !errors.Is(err, db.ErrPrecedenceViolation) {
			t.Errorf("active=%v: err = %v, want ErrPrecedenceViolation", active, err)
		}
	}
	if err := db.CheckReturnFormGeneration(&models.Allocation{AllocationForm: "k"}); err != nil {
		t.Errorf("with allocation form: %v", err)
	}
}

func mustID(t *testing.T, r *db.Repo, s lifecycle.Status) uint {
	t.Helper()
	id, err := r.Vocab.ID(s)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

var errStatusWrite = errors.New("status write failed")

// failLaptopUpdates makes every UPDATE on the laptops table fail.
func failLaptopUpdates(t *testing.T, r *db.Repo) {
	t.Helper()
	err := r.DB.Callback().Update().Before("gorm:update").Register("test:fail_laptop_update", func(tx *gorm.DB) {
		if tx.Statement.Table == models.LaptopTable {
			_ = tx.AddError(errStatusWrite)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func TestCreateAllocationRollsBackWhenStatusWriteFails(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()
	admin := dbtest.User(t, r, "admin1")
	alice := dbtest.User(t, r, "alice")
	lp := dbtest.Laptop(t, r, "SN-001")
	failLaptopUpdates(t, r)

	_, err := r.CreateAllocation(ctx, db.CreateAllocationInput{LaptopID: lp.ID, UserID: alice.ID, AllocatorID: admin.ID})
	if !errors.Is(err, errStatusWrite) {
		t.Fatalf("err = %v, want %v", err, errStatusWrite)
	}
	var n int64
	if err := r.DB.Model(&models.Allocation{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("allocation rows = %d, want 0 after rollback", n)
	}
	if s := statusOf(t, r, lp.ID); s != lifecycle.Available {
		t.Fatalf("status = %s, want Available", s)
	}
}

func TestReturnLaptopRollsBackWhenStatusWriteFails(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()
	admin := dbtest.User(t, r, "admin1")
	lp := dbtest.Laptop(t, r, "SN-001")
	rec := dbtest.Allocate(t, r, lp, dbtest.User(t, r, "alice"), admin)
	failLaptopUpdates(t, r)

	if _, err := r.ReturnLaptop(ctx, db.ReturnLaptopInput{AllocationID: rec.ID, ReturnerID: admin.ID}); !errors.Is(err, errStatusWrite) {
		t.Fatalf("err = %v, want %v", err, errStatusWrite)
	}
	got, err := r.ShowAllocation(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsActive || got.ReturnDate != nil {
		t.Fatalf("allocation closed although the status write failed: %+v", got)
	}
	assertAgreement(t, r, lp.ID)
}

func TestStrictIndexRejectsSecondActiveRow(t *testing.T) {
	r, _ := dbtest.New(t, true)
	admin := dbtest.User(t, r, "admin1")
	bob := dbtest.User(t, r, "bob")
	lp := dbtest.Laptop(t, r, "SN-001")
	dbtest.Allocate(t, r, lp, dbtest.User(t, r, "alice"), admin)

	// bypass the policy guard and write the row directly
	err := r.DB.Create(&models.Allocation{
		ID:             uuid.NewString(),
		LaptopID:       lp.ID,
		UserID:         bob.ID,
		AllocatedBy:    admin.ID,
		AllocationDate: dbtest.Epoch,
		IsActive:       true,
	}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("err = %v, want duplicated key", err)
	}
	if err := db.Translate(err, "allocation"); !errors.Is(err, db.ErrConflict) {
		t.Fatalf("translated err = %v, want ErrConflict", err)
	}
	n, _ := r.CountActiveAllocations(context.Background(), lp.ID)
	if n != 1 {
		t.Fatalf("active allocations = %d, want 1", n)
	}
}

func TestPermissiveSchemaHasNoUniqueActiveIndex(t *testing.T) {
	r, _ := dbtest.New(t, false)
	admin := dbtest.User(t, r, "admin1")
	lp := dbtest.Laptop(t, r, "SN-001")
	dbtest.Allocate(t, r, lp, dbtest.User(t, r, "alice"), admin)

	err := r.DB.Create(&models.Allocation{
		ID:             uuid.NewString(),
		LaptopID:       lp.ID,
		UserID:         admin.ID,
		AllocatedBy:    admin.ID,
		AllocationDate: dbtest.Epoch,
		IsActive:       true,
	}).Error
	if err != nil {
		t.Fatalf("second active row: %v", err)
	}
}
