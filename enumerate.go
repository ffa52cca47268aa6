package kvfile

import (
	"os"
	"path/filepath"
	"sync"
)

// ListKeys lists every structured key currently in the store (spec §4.9).
// It snapshots the directory listing once, filters to names matching the
// fingerprint shape (excluding B_-prefixed binary records), then locks and
// decodes the matching files concurrently, one goroutine per file. A record
// that fails to decode is logged and skipped. It is non-blocking with respect to
// concurrent mutations: entries may vanish between the listing and the
// open (silently skipped) and entries born after the listing began are not
// reported. Binary keys are never included — the design preserves that
// limitation rather than extending it (spec §9, open question).
func (s *Store) ListKeys() *Future[[]any] {
	return goFuture(func() ([]any, error) {
		entries, err := os.ReadDir(s.folder)
		if err != nil {
			return nil, newReadError(nil, err)
		}

		var (
			mu   sync.Mutex
			wg   sync.WaitGroup
			keys []any
		)
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !fingerprintPattern.MatchString(name) {
				continue
			}

			fp := name
			wg.Add(1)
			go func() {
				defer wg.Done()

				guard := s.locks.acquire(fp)
				defer guard.release()

				f, openErr := os.Open(filepath.Join(s.folder, fp))
				if openErr != nil {
					return // vanished between listing and open
				}
				defer f.Close()

				var rec record
				if decErr := s.codec.Decode(f, &rec, s.readHandlers); decErr != nil {
					s.logger.WithError(decErr).WithField("fingerprint", fp).
						Warn("kvfile: skipping undecodable record during enumeration")
					return
				}

				mu.Lock()
				keys = append(keys, rec.Key)
				mu.Unlock()
			}()
		}
		wg.Wait()

		return keys, nil
	})
}
