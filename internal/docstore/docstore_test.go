package docstore

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
)

// storeConformance runs the behavior every backend must share.
func storeConformance(t *testing.T, store Store) {
	ctx := context.Background()

	if _, err := store.Get(ctx, "chats/1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on missing key = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "chats/1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete on missing key = %v, want ErrNotFound", err)
	}

	if err := store.Put(ctx, "chats/1", `{"a":1}`, Unconditional()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	body, err := store.Get(ctx, "chats/1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	data, err := io.ReadAll(body)
	body.Close()
	if err != nil || string(data) != `{"a":1}` {
		t.Fatalf("Get returned %q, %v", data, err)
	}

	exists, err := store.Exists(ctx, "chats/1")
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v", exists, err)
	}

	if err := store.Put(ctx, "chats/1", "other", IfNoneMatch()); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("conditional Put over existing key = %v, want ErrAlreadyExists", err)
	}
	if err := store.Put(ctx, "chats/2", "two", IfNoneMatch()); err != nil {
		t.Fatalf("conditional Put on fresh key failed: %v", err)
	}
	if err := store.Put(ctx, "batches/1/x", "batch", Unconditional()); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	keys, err := store.List(ctx, "chats/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if want := []string{"1", "2"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("List = %v, want %v", keys, want)
	}

	if err := store.Delete(ctx, "chats/1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	exists, err = store.Exists(ctx, "chats/1")
	if err != nil || exists {
		t.Fatalf("Exists after delete = %v, %v", exists, err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeConformance(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	storeConformance(t, NewFileStore(t.TempDir()))
}

func TestFileStoreListEmptyDir(t *testing.T) {
	keys, err := NewFileStore(t.TempDir() + "/missing").List(context.Background(), "chats/")
	if err != nil {
		t.Fatalf("List on missing dir failed: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("List = %v, want empty", keys)
	}
}

func TestPartitionKey(t *testing.T) {
	if got := partitionKey("chats/123"); got != "chats" {
		t.Errorf("partitionKey = %q", got)
	}
	if got := partitionKey("plain"); got != "plain" {
		t.Errorf("partitionKey = %q", got)
	}
}
