// Package storage defines the blob store used for raw and processed review
// documents. Objects are addressed by bucket and key and referenced across
// records as blob://bucket/key URIs.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// refScheme prefixes every blob reference URI.
const refScheme = "blob://"

// BlobRef identifies an object within a bucket.
type BlobRef struct {
	Bucket string
	Key    string
}

// String formats the reference as a blob://bucket/key URI.
func (r BlobRef) String() string {
	return fmt.Sprintf("%s%s/%s", refScheme, r.Bucket, r.Key)
}

// ParseRef parses a blob://bucket/key URI.
func ParseRef(uri string) (BlobRef, error) {
	rest, ok := strings.CutPrefix(uri, refScheme)
	if !ok {
		return BlobRef{}, fmt.Errorf("invalid blob reference %q: missing %s scheme", uri, refScheme)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return BlobRef{}, fmt.Errorf("invalid blob reference %q: want blob://bucket/key", uri)
	}
	return BlobRef{Bucket: bucket, Key: key}, nil
}

// Object is stored content plus its content type.
type Object struct {
	ContentType string
	Body        []byte
}

// BlobStore stores and retrieves objects. Implementations must be safe for
// concurrent use. Get returns an error wrapping errors.ErrNotFound when the
// object does not exist.
type BlobStore interface {
	Put(ctx context.Context, ref BlobRef, obj *Object) error
	Get(ctx context.Context, ref BlobRef) (*Object, error)
}
