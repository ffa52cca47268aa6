package kvfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// GetResult is the result of GetIn: Found is false both when the key has no
// record at all and when an intermediate path component is absent — spec
// §4.6 treats both as "yield nothing", not an error.
type GetResult struct {
	Value any
	Found bool
}

// UpdateResult is the (old, new) pair UpdateIn and AssocIn yield: the
// sub-value located at the requested path before and after the update.
type UpdateResult struct {
	Old any
	New any
}

func binaryName(fp string) string { return "B_" + fp }

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Exists reports whether a structured or binary record exists for key
// (spec §4.6: "true iff the structured OR binary file exists"). It does
// not acquire the per-key lock — it is explicitly racy, used as a hint.
func (s *Store) Exists(key any) *Future[bool] {
	return goFuture(func() (bool, error) {
		fp, err := s.Fingerprint(key)
		if err != nil {
			return false, newReadError(key, err)
		}
		if fileExists(filepath.Join(s.folder, fp)) {
			return true, nil
		}
		return fileExists(filepath.Join(s.folder, binaryName(fp))), nil
	})
}

// GetIn reads the sub-value located at path[1:] within the value stored
// under key path[0]; only path[0] is fingerprinted. path must be
// non-empty. A missing record, or an absent intermediate path component,
// yields an empty (Found == false) result, not an error.
func (s *Store) GetIn(path []any) *Future[GetResult] {
	return goFuture(func() (GetResult, error) {
		if len(path) == 0 {
			return GetResult{}, newReadError(nil, errors.New("kvfile: GetIn requires a non-empty path"))
		}
		key := path[0]

		fp, err := s.Fingerprint(key)
		if err != nil {
			return GetResult{}, newReadError(key, err)
		}

		rec, found, err := s.readRecord(key, fp)
		if err != nil {
			return GetResult{}, err
		}
		if !found {
			return GetResult{}, nil
		}

		val, ok := getPath(rec.Value, path[1:])
		if !ok {
			return GetResult{}, nil
		}
		return GetResult{Value: val, Found: true}, nil
	})
}

// UpdateIn applies f to the sub-value at path[1:], under the per-key lock
// for path[0], writes the new root value back through the atomic write
// protocol, and yields the (old, new) sub-value pair (spec §4.6). path
// must be non-empty.
func (s *Store) UpdateIn(path []any, f func(any) any) *Future[UpdateResult] {
	return goFuture(func() (UpdateResult, error) {
		if len(path) == 0 {
			return UpdateResult{}, newWriteError(nil, errors.New("kvfile: UpdateIn requires a non-empty path"))
		}
		key := path[0]
		sub := path[1:]

		fp, err := s.Fingerprint(key)
		if err != nil {
			return UpdateResult{}, newWriteError(key, err)
		}

		guard := s.locks.acquire(fp)
		defer guard.release()

		rec, found, err := s.readRecord(key, fp)
		if err != nil {
			return UpdateResult{}, err
		}

		var oldRoot any
		if found {
			oldRoot = rec.Value
		}
		oldSub, _ := getPath(oldRoot, sub)

		newRoot := updateSub(oldRoot, sub, f)
		newSub, _ := getPath(newRoot, sub)

		newRec := record{Key: key, Value: newRoot}
		err = writeAtomic(s.folder, fp, s.config, func(w io.Writer) error {
			return s.codec.Encode(w, newRec, s.writeHandlers)
		})
		if err != nil {
			return UpdateResult{}, newWriteError(key, err)
		}

		return UpdateResult{Old: oldSub, New: newSub}, nil
	})
}

// AssocIn is shorthand for UpdateIn(path, func(any) any { return v }).
func (s *Store) AssocIn(path []any, v any) *Future[UpdateResult] {
	return s.UpdateIn(path, func(any) any { return v })
}

// Dissoc deletes the structured file for key under the per-key lock. It is
// not an error for the key to not already exist (spec §4.6).
func (s *Store) Dissoc(key any) *Future[struct{}] {
	return goFuture(func() (struct{}, error) {
		fp, err := s.Fingerprint(key)
		if err != nil {
			return struct{}{}, newWriteError(key, err)
		}

		guard := s.locks.acquire(fp)
		defer guard.release()

		path := filepath.Join(s.folder, fp)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return struct{}{}, nil
			}
			return struct{}{}, newWriteError(key, err)
		}
		if s.config.Fsync {
			if err := syncDir(s.folder); err != nil {
				return struct{}{}, newWriteError(key, err)
			}
		}
		return struct{}{}, nil
	})
}

// readRecord loads and decodes the structured file for key/fp if present.
// It does not acquire the per-key lock itself; callers that need
// linearization against concurrent writers acquire it first. A stored key
// that does not match the requested key is surfaced as a read-error
// wrapping ErrCollision (spec §9, "Collision detection on read").
func (s *Store) readRecord(key any, fp string) (record, bool, error) {
	path := filepath.Join(s.folder, fp)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return record{}, false, nil
		}
		return record{}, false, newReadError(key, err)
	}
	defer f.Close()

	var rec record
	if err := s.codec.Decode(f, &rec, s.readHandlers); err != nil {
		return record{}, false, newReadError(key, err)
	}
	if !s.keysMatch(key, rec.Key) {
		return record{}, false, newReadError(key, ErrCollision)
	}
	return rec, true, nil
}
