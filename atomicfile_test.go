package kvfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// TestWriteAtomicReplacesExistingFile confirms invariant I4: a reader sees
// either the pre-write or the post-write bytes, never a torn file, and the
// rename fully replaces any prior content.
func TestWriteAtomicReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()

	err := writeAtomic(dir, "rec", DefaultConfig(), func(w io.Writer) error {
		_, err := w.Write([]byte("first"))
		return err
	})
	if err != nil {
		t.Fatalf("first write: %v", err)
	}

	err = writeAtomic(dir, "rec", DefaultConfig(), func(w io.Writer) error {
		_, err := w.Write([]byte("second"))
		return err
	})
	if err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "rec"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("expected %q, got %q", "second", got)
	}
}

// TestWriteAtomicCleansUpSideFileOnError is P6 (modeled crash safety) and
// invariant I3: injecting a failure after the side file is created, but
// before the rename, must leave no .new file behind and the pre-existing
// record untouched.
func TestWriteAtomicCleansUpSideFileOnError(t *testing.T) {
	dir := t.TempDir()

	if err := writeAtomic(dir, "rec", DefaultConfig(), func(w io.Writer) error {
		_, err := w.Write([]byte("original"))
		return err
	}); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	boom := errors.New("injected failure")
	err := writeAtomic(dir, "rec", DefaultConfig(), func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected failure to propagate, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(dir, "rec.new")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no .new side file to survive, stat err: %v", statErr)
	}

	got, err := os.ReadFile(filepath.Join(dir, "rec"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("expected pre-existing record to survive untouched, got %q", got)
	}
}

// TestWriteAtomicOverwritesStaleSideFile documents that a leftover .new
// file from a crashed prior attempt is acceptable to overwrite (spec §4.5
// step 1).
func TestWriteAtomicOverwritesStaleSideFile(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "rec.new"), []byte("stale"), 0o644); err != nil {
		t.Fatalf("seeding stale .new file: %v", err)
	}

	err := writeAtomic(dir, "rec", DefaultConfig(), func(w io.Writer) error {
		_, err := w.Write([]byte("fresh"))
		return err
	})
	if err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "rec"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "fresh" {
		t.Errorf("expected %q, got %q", "fresh", got)
	}
}

// TestWriteAtomicFsyncDisabled confirms Config.Fsync=false still writes
// correctly (durability, not correctness, is what it trades away).
func TestWriteAtomicFsyncDisabled(t *testing.T) {
	dir := t.TempDir()

	err := writeAtomic(dir, "rec", Config{Fsync: false}, func(w io.Writer) error {
		_, err := w.Write([]byte("data"))
		return err
	})
	if err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "rec"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("expected %q, got %q", "data", got)
	}
}
