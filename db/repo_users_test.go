package db_test

import (
	"context"
	"errors"
	"testing"

	"invensys/db"
	"invensys/db/dbtest"
)

func TestCreateUserConflicts(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()
	dbtest.User(t, r, "alice")

	_, err := r.CreateUser(ctx, db.CreateUserInput{Username: "ALICE", Email: "other@example.com", Password: "x"})
	if !errors.Is(err, db.ErrConflict) {
		t.Fatalf("duplicate username: err = %v", err)
	}
	_, err = r.CreateUser(ctx, db.CreateUserInput{Username: "alice2", Email: "Alice@Example.com", Password: "x"})
	if !errors.Is(err, db.ErrConflict) {
		t.Fatalf("duplicate email: err = %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()
	u := dbtest.User(t, r, "alice")

	got, err := r.VerifyPassword(ctx, "Alice", "secret-password")
	if err != nil || got.ID != u.ID {
		t.Fatalf("VerifyPassword = %v, %v", got, err)
	}
	for _, tc := range []struct{ user, pass string }{
		{"alice", "wrong"},
		{"nobody", "secret-password"},
	} {
		if _, err := r.VerifyPassword(ctx, tc.user, tc.pass); !errors.Is(err, db.ErrUnauthorized) {
			t.Errorf("%s/%s: err = %v, want ErrUnauthorized", tc.user, tc.pass, err)
		}
	}
}

func TestDeleteUserPolicy(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()
	admin := dbtest.User(t, r, "admin1")
	holder := dbtest.User(t, r, "holder")
	former := dbtest.User(t, r, "former")
	fresh := dbtest.User(t, r, "fresh")

	dbtest.Allocate(t, r, dbtest.Laptop(t, r, "SN-001"), holder, admin)
	rec := dbtest.Allocate(t, r, dbtest.Laptop(t, r, "SN-002"), former, admin)
	if _, err := r.ReturnLaptop(ctx, db.ReturnLaptopInput{AllocationID: rec.ID, ReturnerID: admin.ID}); err != nil {
		t.Fatal(err)
	}

	if _, err := r.DeleteUser(ctx, holder.ID); !errors.Is(err, db.ErrConflict) {
		t.Fatalf("holder: err = %v, want ErrConflict", err)
	}

	outcome, err := r.DeleteUser(ctx, former.ID)
	if err != nil || outcome != db.UserDeactivated {
		t.Fatalf("former: %v, %v", outcome, err)
	}
	u, err := r.FindUserByID(ctx, former.ID)
	if err != nil || u.IsActive {
		t.Fatalf("former should remain, inactive: %+v, %v", u, err)
	}
	if _, err := r.ShowAllocation(ctx, rec.ID); err != nil {
		t.Fatalf("allocation history lost: %v", err)
	}

	outcome, err = r.DeleteUser(ctx, fresh.ID)
	if err != nil || outcome != db.UserDeleted {
		t.Fatalf("fresh: %v, %v", outcome, err)
	}
	if _, err := r.FindUserByID(ctx, fresh.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("fresh user still present: %v", err)
	}

	if _, err := r.DeleteUser(ctx, "missing"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing: err = %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()

	created, err := r.EnsureAdmin(ctx, "root", "root@example.com", "pw")
	if err != nil || !created {
		t.Fatalf("first EnsureAdmin = %v, %v", created, err)
	}
	created, err = r.EnsureAdmin(ctx, "root", "root@example.com", "pw")
	if err != nil || created {
		t.Fatalf("second EnsureAdmin = %v, %v", created, err)
	}
	n, err := r.CountAdmins(ctx)
	if err != nil || n != 1 {
		t.Fatalf("CountAdmins = %d, %v", n, err)
	}
}

func TestMasterData(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()

	bu, err := r.CreateBusinessUnit(ctx, "", "Finance")
	if err != nil {
		t.Fatal(err)
	}
	if bu.Name != "finance" {
		t.Errorf("Name = %q", bu.Name)
	}
	if _, err := r.CreateBusinessUnit(ctx, "", "FINANCE"); !errors.Is(err, db.ErrConflict) {
		t.Fatalf("duplicate unit: err = %v", err)
	}
	if _, err := r.CreateDepartment(ctx, "", "Payroll"); err != nil {
		t.Fatal(err)
	}
	deps, err := r.ListDepartments(ctx, "payroll")
	if err != nil || len(deps) != 1 {
		t.Fatalf("ListDepartments = %v, %v", deps, err)
	}

	org, err := r.GetOrganization(ctx, "Fallback Ltd")
	if err != nil || org.Name != "Fallback Ltd" {
		t.Fatalf("GetOrganization fallback = %+v, %v", org, err)
	}
	if _, err := r.UpsertOrganization(ctx, "", db.OrganizationInput{Name: "Invensys", POBox: "42"}); err != nil {
		t.Fatal(err)
	}
	again, err := r.UpsertOrganization(ctx, "", db.OrganizationInput{Name: "Invensys Ltd"})
	if err != nil {
		t.Fatal(err)
	}
	org, err = r.GetOrganization(ctx, "Fallback Ltd")
	if err != nil || org.ID != again.ID || org.Name != "Invensys Ltd" {
		t.Fatalf("GetOrganization = %+v, %v", org, err)
	}

	a, err := r.CreateAccessory(ctx, "", "Dock", "DK-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.AssignAccessory(ctx, "", a.ID, "missing"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("assign to missing allocation: err = %v", err)
	}
	admin := dbtest.User(t, r, "admin1")
	rec := dbtest.Allocate(t, r, dbtest.Laptop(t, r, "SN-001"), dbtest.User(t, r, "alice"), admin)
	got, err := r.AssignAccessory(ctx, "", a.ID, rec.ID)
	if err != nil || got.AllocationID == nil || *got.AllocationID != rec.ID {
		t.Fatalf("AssignAccessory = %+v, %v", got, err)
	}
	got, err = r.AssignAccessory(ctx, "", a.ID, "")
	if err != nil || got.AllocationID != nil {
		t.Fatalf("unassign = %+v, %v", got, err)
	}
}

func TestRepairHistoryLeavesStatus(t *testing.T) {
	r, _ := dbtest.New(t, false)
	ctx := context.Background()
	lp := dbtest.Laptop(t, r, "SN-001")

	e, err := r.CreateRepair(ctx, "", db.CreateRepairInput{
		LaptopID:        lp.ID,
		Details:         "keyboard replaced",
		FaultReportedAt: dbtest.Epoch,
		Vendor:          "FixIt",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetRepair(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	list, err := r.ListRepairs(ctx, lp.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListRepairs = %v, %v", list, err)
	}
	if s := statusOf(t, r, lp.ID); s != "Available" {
		t.Fatalf("status = %s", s)
	}
	if _, err := r.CreateRepair(ctx, "", db.CreateRepairInput{LaptopID: "missing"}); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing laptop: err = %v", err)
	}
}
