package kvfile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

// writeAtomic implements the atomic write protocol (spec §4.5): it streams
// the bytes produced by write into folder/name.new, flushes and optionally
// fsyncs the data, closes the descriptor, atomically renames the side file
// into place, and — on the success path only — fsyncs the containing
// directory. Any failure before the rename commits removes the side file so
// invariant I3 (no surviving .new file) holds on both the success and the
// error path.
func writeAtomic(folder, name string, cfg Config, write func(w io.Writer) error) error {
	finalPath := filepath.Join(folder, name)
	tmpPath := finalPath + ".new"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	abort := func(cause error) error {
		f.Close()
		os.Remove(tmpPath)
		return cause
	}

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return abort(err)
	}
	if err := bw.Flush(); err != nil {
		return abort(err)
	}
	if cfg.Fsync {
		if err := f.Sync(); err != nil {
			return abort(err)
		}
	}
	// Closing before rename is required for atomic rename semantics on
	// some operating systems (spec §4.5 step 5).
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if cfg.Fsync {
		return syncDir(folder)
	}
	return nil
}
