package preflight

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckJournalLock reports whether another process currently holds the
// journal. The lock is released again before returning.
func CheckJournalLock(journalPath string) Result {
	const name = "Journal lock"

	lockPath := journalPath + ".lock"
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: "unused"}
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", lockPath, err)}
	}
	if !ok {
		return Result{Name: name, Detail: fmt.Sprintf("%s (held by another process)", lockPath)}
	}
	if err := lock.Unlock(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: unlock: %v)", lockPath, err)}
	}
	return Result{Name: name, Passed: true, Detail: "available"}
}
