// Package documents generates, uploads and hands out the paper trail of the
// allocation and procurement ledgers. It only attaches document keys to
// existing records; lifecycle fields are never written here.
package documents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"invensys/clock"
	"invensys/db"
	"invensys/forms"
	"invensys/models"
	"invensys/storage"

	"go.uber.org/zap"
)

// Ledger is the slice of the repository the workflow depends on.
type Ledger interface {
	ShowAllocation(ctx context.Context, id string) (*models.Allocation, error)
	LoadAllocation(ctx context.Context, id string) (*models.Allocation, error)
	AttachAllocationForm(ctx context.Context, allocationID, key string) error
	AttachReturnForm(ctx context.Context, allocationID, key string) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	GetOrganization(ctx context.Context, fallbackName string) (*models.Organization, error)

	RecordExists(ctx context.Context, actor db.Actor, id string) (bool, error)
	AttachPurchaseOrder(ctx context.Context, actor db.Actor, id, key string) (*models.Procurement, error)
	PurchaseOrderURL(ctx context.Context, actor db.Actor, id string, presign func(key string) (string, error)) (string, error)
}

type Options struct {
	Timeout    time.Duration
	PresignTTL time.Duration
	OrgName    string
}

type Workflow struct {
	ledger   Ledger
	blobs    storage.BlobStore
	renderer forms.Renderer
	clock    clock.Clock
	log      *zap.Logger
	opts     Options
}

func New(ledger Ledger, blobs storage.BlobStore, renderer forms.Renderer, clk clock.Clock, log *zap.Logger, opts Options) *Workflow {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = time.Hour
	}
	return &Workflow{
		ledger:   ledger,
		blobs:    blobs,
		renderer: renderer,
		clock:    clk,
		log:      log.With(zap.String("component", "documents")),
		opts:     opts,
	}
}

// Form is a rendered document ready to be streamed to the caller.
type Form struct {
	FileName string
	Data     []byte
}

// GenerateForm renders the allocation or return form of an allocation. A
// return form needs an uploaded allocation form first, whatever the
// allocation's state.
func (w *Workflow) GenerateForm(ctx context.Context, actor db.Actor, allocationID string, kind forms.Kind) (*Form, error) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	rec, err := w.ledger.ShowAllocation(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if kind == forms.Return {
		if err := db.CheckReturnFormGeneration(rec); err != nil {
			return nil, err
		}
	}

	org, err := w.ledger.GetOrganization(ctx, w.opts.OrgName)
	if err != nil {
		return nil, err
	}
	payload := forms.Payload{
		Header:              forms.DefaultHeader(org.Name, joinAddress(org)),
		GeneratedAt:         w.clock.Now(),
		AllocationDate:      rec.AllocationDate,
		AllocationCondition: rec.AllocationCondition,
		Reason:              rec.Reason,
		ReturnDate:          rec.ReturnDate,
		ReturnComment:       rec.ReturnComment,
		ConditionOnReturn:   rec.ConditionOnReturn,
		Allocator:           w.person(ctx, rec.AllocatedBy),
	}
	if rec.ReturnedBy != nil {
		payload.Returner = w.person(ctx, *rec.ReturnedBy)
	}
	if u := rec.User; u != nil {
		payload.Employee = forms.Person{FirstName: u.FirstName, LastName: u.LastName, Username: u.Username}
	}
	if lp := rec.Laptop; lp != nil {
		payload.Device = forms.Device{Brand: lp.Brand, Model: lp.Model, SerialNumber: lp.SerialNumber, AssetTag: lp.AssetTag}
	}

	data, err := w.render(ctx, kind, payload)
	if err != nil {
		return nil, err
	}
	w.log.Info("form generated",
		zap.String("actor_id", actor.ID),
		zap.String("allocation_id", rec.ID),
		zap.String("kind", string(kind)))
	return &Form{
		FileName: fmt.Sprintf("%s_%s_form.pdf", payload.Employee.Username, kind),
		Data:     data,
	}, nil
}

// render runs the renderer under the workflow deadline.
func (w *Workflow) render(ctx context.Context, kind forms.Kind, p forms.Payload) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := w.renderer.Render(kind, p)
		done <- result{data, err}
	}()
	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("render %s form: %w", kind, ctx.Err())
	}
}

func (w *Workflow) person(ctx context.Context, userID string) forms.Person {
	if userID == "" {
		return forms.Person{}
	}
	u, err := w.ledger.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			w.log.Warn("form signatory lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return forms.Person{}
	}
	return forms.Person{FirstName: u.FirstName, LastName: u.LastName, Username: u.Username}
}

func joinAddress(org *models.Organization) string {
	var parts []string
	for _, s := range []string{org.StreetAddress, org.POBox} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func contentType(fileName string, data []byte) string {
	if strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return "application/pdf"
	}
	return http.DetectContentType(data)
}
