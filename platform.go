package kvfile

import (
	"os"
	"runtime"
)

// isWindows reports whether the process is running on the Windows OS
// family, where directory fsync is neither permitted nor required for
// rename atomicity (spec §4.5 step 7, §9 "Windows vs POSIX").
func isWindows() bool {
	return runtime.GOOS == "windows"
}

// ensureDir creates folder, and any missing parents, if it does not already
// exist.
func ensureDir(folder string) error {
	return os.MkdirAll(folder, 0o755)
}

// syncDir opens folder, forces it to stable storage, and closes it again.
// It is a no-op on the Windows family. Callers on the crash-safety success
// path should treat its error as fatal to the operation; best-effort
// callers (e.g. delete-store's parent-directory sync) may choose to log and
// continue instead.
func syncDir(folder string) error {
	if isWindows() {
		return nil
	}
	d, err := os.Open(folder)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
