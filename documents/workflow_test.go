package documents

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"invensys/db"
	"invensys/db/dbtest"
	"invensys/forms"
	"invensys/lifecycle"
	"invensys/models"
	"invensys/storage"

	"go.uber.org/zap"
)

type fixture struct {
	repo  *db.Repo
	blobs *storage.MemStore
	wf    *Workflow
	admin *models.User
	actor db.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, clk := dbtest.New(t, false)
	blobs := storage.NewMemStore(clk)
	wf := New(repo, blobs, forms.NewPDFRenderer(), clk, zap.NewNop(), Options{
		Timeout:    10 * time.Second,
		PresignTTL: time.Hour,
		OrgName:    "Invensys",
	})
	admin := dbtest.User(t, repo, "admin1")
	return &fixture{
		repo:  repo,
		blobs: blobs,
		wf:    wf,
		admin: admin,
		actor: db.Actor{ID: admin.ID, Username: admin.Username, IsAdmin: true},
	}
}

func (f *fixture) laptopStatus(t *testing.T, id string) lifecycle.Status {
	t.Helper()
	lp, err := f.repo.GetLaptop(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	s, err := f.repo.Vocab.Status(lp.StatusID)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAllocationDocumentScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pdf := []byte("%PDF-1.4 signed")

	lp := dbtest.Laptop(t, f.repo, "SN-001")
	if s := f.laptopStatus(t, lp.ID); s != lifecycle.Available {
		t.Fatalf("status = %s, want Available", s)
	}
	rec := dbtest.Allocate(t, f.repo, lp, dbtest.User(t, f.repo, "u1"), f.admin)
	if s := f.laptopStatus(t, lp.ID); s != lifecycle.Allocated {
		t.Fatalf("status = %s, want Allocated", s)
	}

	_, err := f.wf.UploadReturnForm(ctx, f.actor, rec.ID, "return.pdf", pdf)
	if !errors.Is(err, db.ErrForbidden) {
		t.Fatalf("upload on active allocation: err = %v, want ErrForbidden", err)
	}
	if f.blobs.Len() != 0 {
		t.Fatal("rejected upload wrote a blob")
	}

	got, err := f.repo.ReturnLaptop(ctx, db.ReturnLaptopInput{AllocationID: rec.ID, ReturnerID: f.admin.ID})
	if err != nil {
		t.Fatal(err)
	}
	if got.IsActive {
		t.Fatal("allocation still active")
	}
	if s := f.laptopStatus(t, lp.ID); s != lifecycle.Available {
		t.Fatalf("status = %s, want Available", s)
	}

	key, err := f.wf.UploadReturnForm(ctx, f.actor, rec.ID, "return.pdf", pdf)
	if err != nil {
		t.Fatalf("upload after return: %v", err)
	}
	if !strings.HasPrefix(key, "return_forms/"+rec.ID+"/") {
		t.Fatalf("key = %q", key)
	}
	stored, _ := f.repo.ShowAllocation(ctx, rec.ID)
	if stored.ReturnForm != key {
		t.Fatalf("ReturnForm = %q, want %q", stored.ReturnForm, key)
	}

	// no allocation form was ever uploaded
	_, err = f.wf.GenerateForm(ctx, f.actor, rec.ID, forms.Return)
	if !errors.Is(err, db.ErrPrecedenceViolation) {
		t.Fatalf("generate return form: err = %v, want ErrPrecedenceViolation", err)
	}
}

func TestGenerateForms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := dbtest.Allocate(t, f.repo, dbtest.Laptop(t, f.repo, "SN-001"), dbtest.User(t, f.repo, "u1"), f.admin)

	form, err := f.wf.GenerateForm(ctx, f.actor, rec.ID, forms.Allocation)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(form.Data, []byte("%PDF-")) || form.FileName != "u1_allocation_form.pdf" {
		t.Fatalf("form = %s, %d bytes", form.FileName, len(form.Data))
	}

	// an active allocation with an allocation form may have its return form generated
	if _, err := f.wf.UploadAllocationForm(ctx, f.actor, rec.ID, "alloc.pdf", form.Data); err != nil {
		t.Fatal(err)
	}
	ret, err := f.wf.GenerateForm(ctx, f.actor, rec.ID, forms.Return)
	if err != nil {
		t.Fatalf("generate return form: %v", err)
	}
	if ret.FileName != "u1_return_form.pdf" {
		t.Fatalf("FileName = %q", ret.FileName)
	}

	if _, err := f.wf.GenerateForm(ctx, f.actor, "missing", forms.Allocation); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing allocation: err = %v", err)
	}
}

func TestDownloadForms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := dbtest.Allocate(t, f.repo, dbtest.Laptop(t, f.repo, "SN-001"), dbtest.User(t, f.repo, "u1"), f.admin)

	if _, err := f.wf.DownloadAllocationForm(ctx, f.actor, rec.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("no form yet: err = %v", err)
	}
	if _, err := f.wf.DownloadReturnForm(ctx, f.actor, "missing"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing allocation: err = %v", err)
	}
	key, err := f.wf.UploadAllocationForm(ctx, f.actor, rec.ID, "alloc.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatal(err)
	}
	url, err := f.wf.DownloadAllocationForm(ctx, f.actor, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	// 1 hour from the fixed clock
	wantExp := dbtest.Epoch.Add(time.Hour).Unix()
	if !strings.Contains(url, strings.ReplaceAll(key, "/", "%2F")) {
		t.Fatalf("url %q does not reference %q", url, key)
	}
	if !strings.HasSuffix(url, "expires="+strconv.FormatInt(wantExp, 10)) {
		t.Fatalf("url %q, want expiry %d", url, wantExp)
	}
}

func TestUploadFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := dbtest.Allocate(t, f.repo, dbtest.Laptop(t, f.repo, "SN-001"), dbtest.User(t, f.repo, "u1"), f.admin)

	if _, err := f.wf.UploadAllocationForm(ctx, f.actor, "missing", "a.pdf", nil); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing allocation: err = %v", err)
	}

	f.blobs.FailPut = errors.New("bucket unavailable")
	if _, err := f.wf.UploadAllocationForm(ctx, f.actor, rec.ID, "a.pdf", []byte("x")); err == nil {
		t.Fatal("blob failure must surface")
	}
	stored, _ := f.repo.ShowAllocation(ctx, rec.ID)
	if stored.AllocationForm != "" {
		t.Fatal("key attached although the blob write failed")
	}
}

func TestPurchaseOrderDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := dbtest.Purchase(t, f.repo, f.actor, dbtest.Laptop(t, f.repo, "SN-001"), "PO-1", "Acme")

	if _, err := f.wf.UploadPurchaseOrder(ctx, f.actor, "missing", "po.pdf", []byte("%PDF")); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("missing record: err = %v", err)
	}
	if f.blobs.Len() != 0 {
		t.Fatal("blob written for a missing record")
	}
	if _, err := f.wf.DownloadPurchaseOrder(ctx, f.actor, p.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("no PO yet: err = %v", err)
	}
	key, err := f.wf.UploadPurchaseOrder(ctx, f.actor, p.ID, "po.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(key, "purchase_orders/"+p.ID+"/") {
		t.Fatalf("key = %q", key)
	}
	if _, err := f.wf.DownloadPurchaseOrder(ctx, f.actor, p.ID); err != nil {
		t.Fatal(err)
	}

	entries, err := f.repo.ListAudit(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]int{}
	for _, e := range entries {
		seen[e.Action]++
	}
	// create, failed quiet search, upload, download
	if seen[db.ActionCreatePurchase] != 1 || seen[db.ActionRecordSearch] != 1 ||
		seen[db.ActionUploadPurchase] != 1 || seen[db.ActionDownloadPurchase] != 1 {
		t.Fatalf("audit actions = %v", seen)
	}
}

func TestGenerateFormTimesOut(t *testing.T) {
	f := newFixture(t)
	rec := dbtest.Allocate(t, f.repo, dbtest.Laptop(t, f.repo, "SN-001"), dbtest.User(t, f.repo, "u1"), f.admin)
	release := make(chan struct{})
	defer close(release)
	f.wf.renderer = blockingRenderer{release}
	f.wf.opts.Timeout = 200 * time.Millisecond

	_, err := f.wf.GenerateForm(context.Background(), f.actor, rec.ID, forms.Allocation)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

type blockingRenderer struct{ release chan struct{} }

func (b blockingRenderer) Render(forms.Kind, forms.Payload) ([]byte, error) {
	<-b.release
	return nil, nil
}
