package documents

import (
	"context"
	"fmt"

	"invensys/db"
	"invensys/forms"

	"go.uber.org/zap"
)

func (w *Workflow) DownloadAllocationForm(ctx context.Context, actor db.Actor, allocationID string) (string, error) {
	return w.downloadAllocationDoc(ctx, actor, allocationID, forms.Allocation)
}

func (w *Workflow) DownloadReturnForm(ctx context.Context, actor db.Actor, allocationID string) (string, error) {
	return w.downloadAllocationDoc(ctx, actor, allocationID, forms.Return)
}

func (w *Workflow) downloadAllocationDoc(ctx context.Context, actor db.Actor, allocationID string, kind forms.Kind) (string, error) {
	rec, err := w.ledger.LoadAllocation(ctx, allocationID)
	if err != nil {
		return "", err
	}
	key := rec.AllocationForm
	if kind == forms.Return {
		key = rec.ReturnForm
	}
	if key == "" {
		return "", fmt.Errorf("allocation %s has no %s form attached: %w", rec.ID, kind, db.ErrNotFound)
	}
	url, err := w.blobs.PresignedGet(ctx, key, w.opts.PresignTTL)
	if err != nil {
		return "", err
	}
	w.log.Info("form download issued",
		zap.String("actor_id", actor.ID),
		zap.String("allocation_id", rec.ID),
		zap.String("kind", string(kind)))
	return url, nil
}

// DownloadPurchaseOrder is audited inside the ledger; the entry commits only
// when a URL was issued.
func (w *Workflow) DownloadPurchaseOrder(ctx context.Context, actor db.Actor, recordID string) (string, error) {
	return w.ledger.PurchaseOrderURL(ctx, actor, recordID, func(key string) (string, error) {
		return w.blobs.PresignedGet(ctx, key, w.opts.PresignTTL)
	})
}
