package kvfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// TestNew_CreatesFolderAndProbesWritability covers scenario 6 "happy path":
// New should create a missing folder and succeed against a writable one.
func TestNew_CreatesFolderAndProbesWritability(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")

	store, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if store == nil {
		t.Fatal("New returned a nil store with a nil error")
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("expected folder to exist after New: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %s to be a directory", dir)
	}

	// The writability probe must not leave any stray file behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty folder after New, found %d entries", len(entries))
	}
}

// TestNew_NotWritable covers scenario 6: constructing against a read-only
// directory yields a not-writable error, synchronously.
func TestNew_NotWritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("writability probe cannot fail for root")
	}

	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer os.Chmod(dir, 0o755)

	_, err := New(dir)
	if err == nil {
		t.Fatal("expected New to fail against a read-only directory")
	}

	var storeErr *StoreError
	if !asStoreError(err, &storeErr) {
		t.Fatalf("expected a *StoreError, got %T: %v", err, err)
	}
	if storeErr.Kind != KindNotWritable {
		t.Errorf("expected KindNotWritable, got %v", storeErr.Kind)
	}
}

func asStoreError(err error, target **StoreError) bool {
	se, ok := err.(*StoreError)
	if !ok {
		return false
	}
	*target = se
	return true
}

// TestDelete checks the success path of delete-store: it should remove
// every structured/binary file and the folder itself.
func TestDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := store.AssocIn([]any{"a"}, 1).Wait(); err != nil {
		t.Fatalf("AssocIn failed: %v", err)
	}
	if _, err := store.BAssoc("b", bytes.NewReader([]byte("hi"))).Wait(); err != nil {
		t.Fatalf("BAssoc failed: %v", err)
	}

	if err := Delete(dir); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected folder to be removed, stat err: %v", err)
	}
}
