package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"fs":     fsStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			info, err := store.Put(ctx, "reports/gaps.csv", strings.NewReader("id,name\n"), PutOptions{
				ContentType: "text/csv",
				Metadata:    map[string]string{"source": "snapshot"},
			})
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Size != int64(len("id,name\n")) {
				t.Fatalf("size = %d", info.Size)
			}

			got, rc, err := store.Get(ctx, "reports/gaps.csv")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			body, err := io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(body) != "id,name\n" {
				t.Fatalf("body = %q", body)
			}
			if got.ContentType != "text/csv" {
				t.Fatalf("content type = %q", got.ContentType)
			}
			if got.Metadata["source"] != "snapshot" {
				t.Fatalf("metadata = %v", got.Metadata)
			}

			head, err := store.Head(ctx, "reports/gaps.csv")
			if err != nil {
				t.Fatalf("head: %v", err)
			}
			if head.Key != "reports/gaps.csv" {
				t.Fatalf("head key = %q", head.Key)
			}

			existed, err := store.Delete(ctx, "reports/gaps.csv")
			if err != nil || !existed {
				t.Fatalf("delete = %v, %v", existed, err)
			}
			if _, err := store.Head(ctx, "reports/gaps.csv"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("head after delete: %v", err)
			}
			existed, err = store.Delete(ctx, "reports/gaps.csv")
			if err != nil || existed {
				t.Fatalf("repeat delete = %v, %v", existed, err)
			}
		})
	}
}

func TestStoreListFiltersByPrefix(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"a/one.csv", "a/two.csv", "b/three.csv"} {
				if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err != nil {
					t.Fatalf("put %s: %v", key, err)
				}
			}
			infos, err := store.List(ctx, "a/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 2 {
				t.Fatalf("list returned %d entries", len(infos))
			}
			if infos[0].Key != "a/one.csv" || infos[1].Key != "a/two.csv" {
				t.Fatalf("keys = %q, %q", infos[0].Key, infos[1].Key)
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, _, err := store.Get(ctx, "absent"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("get missing: %v", err)
			}
		})
	}
}

func TestFilesystemRejectsTraversalKeys(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "../escape", "/absolute", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Errorf("key %q accepted", key)
		}
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	t.Setenv("TALENTCORE_BLOB_DRIVER", "memory")
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}

	t.Setenv("TALENTCORE_BLOB_DRIVER", string(DriverFilesystem))
	t.Setenv("TALENTCORE_BLOB_FS_ROOT", t.TempDir())
	store, err = Open(ctx)
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}

	t.Setenv("TALENTCORE_BLOB_DRIVER", "bogus")
	if _, err := Open(ctx); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("TALENTCORE_BLOB_DRIVER", "s3")
	t.Setenv("TALENTCORE_BLOB_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("expected missing bucket error")
	}
}
