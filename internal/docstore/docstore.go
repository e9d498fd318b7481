// Package docstore is a small keyed JSON document store. Keys are
// slash-separated paths ("chats/123", "batches/123/<id>") and the first
// segment doubles as the partition for backends that want one.
package docstore

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

type PutCondition int

const (
	PutAlways PutCondition = iota
	PutIfNoneMatch
)

type PutOptions struct {
	Condition PutCondition
}

func Unconditional() PutOptions {
	return PutOptions{Condition: PutAlways}
}

func IfNoneMatch() PutOptions {
	return PutOptions{Condition: PutIfNoneMatch}
}

// Store is the persistence collaborator. Implementations must return
// ErrNotFound from Get and Delete for missing keys, and ErrAlreadyExists
// from Put when PutIfNoneMatch fails.
type Store interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key, value string, opts PutOptions) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

func partitionKey(key string) string {
	if idx := strings.Index(key, "/"); idx >= 0 {
		return key[:idx]
	}
	return key
}
