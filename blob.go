package kvfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BlobHandle is what BGet's locked callback receives: a readable stream
// over the blob's full contents (already read into memory, so reading it
// does not touch the file), its byte length, and the opaque *os.File handle
// the bytes were read from, which stays open until the callback returns
// (spec §4.7).
type BlobHandle struct {
	Input io.Reader
	Size  int64
	File  *os.File
}

// BAssoc streams input through the atomic write protocol into the binary
// record for key, under the per-key lock. No codec involvement: the
// payload is opaque bytes, verbatim (spec §4.7).
func (s *Store) BAssoc(key any, input io.Reader) *Future[struct{}] {
	return goFuture(func() (struct{}, error) {
		fp, err := s.Fingerprint(key)
		if err != nil {
			return struct{}{}, newWriteError(key, err)
		}

		guard := s.locks.acquire(fp)
		defer guard.release()

		err = writeAtomic(s.folder, binaryName(fp), s.config, func(w io.Writer) error {
			_, copyErr := io.Copy(w, input)
			return copyErr
		})
		if err != nil {
			return struct{}{}, newWriteError(key, err)
		}
		return struct{}{}, nil
	})
}

// BGet reads the binary record for key fully into memory, then invokes cb
// while still holding the per-key lock, so the underlying file cannot be
// rewritten out from under the callback by a concurrent BAssoc's rename.
// A missing record yields (false, nil) without calling cb. An error or
// panic from cb surfaces as a read-error (spec §4.7).
func (s *Store) BGet(key any, cb func(BlobHandle) error) *Future[bool] {
	return goFuture(func() (found bool, err error) {
		fp, err := s.Fingerprint(key)
		if err != nil {
			return false, newReadError(key, err)
		}

		guard := s.locks.acquire(fp)
		defer guard.release()

		path := filepath.Join(s.folder, binaryName(fp))
		file, openErr := os.Open(path)
		if openErr != nil {
			if os.IsNotExist(openErr) {
				return false, nil
			}
			return false, newReadError(key, openErr)
		}
		defer file.Close()

		info, statErr := file.Stat()
		if statErr != nil {
			return false, newReadError(key, statErr)
		}

		data, readErr := io.ReadAll(file)
		if readErr != nil {
			return false, newReadError(key, readErr)
		}

		handle := BlobHandle{
			Input: bytes.NewReader(data),
			Size:  info.Size(),
			File:  file,
		}

		defer func() {
			if r := recover(); r != nil {
				found, err = false, newReadError(key, fmt.Errorf("kvfile: bget callback panic: %v", r))
			}
		}()
		if cbErr := cb(handle); cbErr != nil {
			return false, newReadError(key, cbErr)
		}
		return true, nil
	})
}
