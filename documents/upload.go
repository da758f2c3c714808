package documents

import (
	"context"
	"fmt"

	"invensys/db"
	"invensys/storage"

	"go.uber.org/zap"
)

// 上传顺序：先检查记录 → 写 blob → 事务内更新文档 key
// blob 写成功但 key 更新失败时只留下孤儿 blob，错误照常返回

func (w *Workflow) UploadAllocationForm(ctx context.Context, actor db.Actor, allocationID, fileName string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	if _, err := w.ledger.LoadAllocation(ctx, allocationID); err != nil {
		return "", err
	}
	key := storage.ObjectKey(storage.AllocationForms, allocationID, fileName)
	if err := w.blobs.Put(ctx, key, data, contentType(fileName, data)); err != nil {
		return "", fmt.Errorf("upload allocation form: %w", err)
	}
	if err := w.ledger.AttachAllocationForm(ctx, allocationID, key); err != nil {
		w.log.Warn("allocation form stored but not attached", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("attach allocation form: %w", err)
	}
	w.log.Info("allocation form uploaded",
		zap.String("actor_id", actor.ID),
		zap.String("allocation_id", allocationID),
		zap.String("key", key))
	return key, nil
}

// UploadReturnForm is refused while the allocation is still active. The
// gate is checked before the blob write and again when the key is attached.
func (w *Workflow) UploadReturnForm(ctx context.Context, actor db.Actor, allocationID, fileName string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	rec, err := w.ledger.LoadAllocation(ctx, allocationID)
	if err != nil {
		return "", err
	}
	if err := db.CheckReturnFormUpload(rec); err != nil {
		return "", err
	}
	key := storage.ObjectKey(storage.ReturnForms, allocationID, fileName)
	if err := w.blobs.Put(ctx, key, data, contentType(fileName, data)); err != nil {
		return "", fmt.Errorf("upload return form: %w", err)
	}
	if err := w.ledger.AttachReturnForm(ctx, allocationID, key); err != nil {
		w.log.Warn("return form stored but not attached", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("attach return form: %w", err)
	}
	w.log.Info("return form uploaded",
		zap.String("actor_id", actor.ID),
		zap.String("allocation_id", allocationID),
		zap.String("key", key))
	return key, nil
}

// UploadPurchaseOrder runs the audited quiet search first so a miss leaves an
// audit entry and no blob.
func (w *Workflow) UploadPurchaseOrder(ctx context.Context, actor db.Actor, recordID, fileName string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	if _, err := w.ledger.RecordExists(ctx, actor, recordID); err != nil {
		return "", err
	}
	key := storage.ObjectKey(storage.PurchaseOrders, recordID, fileName)
	if err := w.blobs.Put(ctx, key, data, contentType(fileName, data)); err != nil {
		return "", fmt.Errorf("upload purchase order: %w", err)
	}
	if _, err := w.ledger.AttachPurchaseOrder(ctx, actor, recordID, key); err != nil {
		w.log.Warn("purchase order stored but not attached", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("attach purchase order: %w", err)
	}
	w.log.Info("purchase order uploaded",
		zap.String("actor_id", actor.ID),
		zap.String("record_id", recordID),
		zap.String("key", key))
	return key, nil
}
