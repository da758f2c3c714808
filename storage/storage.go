// Package storage holds binary documents outside the relational store. Records
// only keep the object key; the blob never points back at a record.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrObjectNotFound = errors.New("object not found")

// BlobStore is the document side-storage capability.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignedGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Kind namespaces object keys by document type.
type Kind string

const (
	AllocationForms Kind = "allocation_forms"
	ReturnForms     Kind = "return_forms"
	PurchaseOrders  Kind = "purchase_orders"
)

// ObjectKey returns <kind>/<recordID>/<random>_<file name>. The random part
// keeps re-uploads from overwriting each other.
func ObjectKey(kind Kind, recordID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s_%s", kind, recordID, uuid.NewString(), sanitizeFileName(fileName))
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "document.pdf"
	}
	return out
}
