package task

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// locksDirName is the subdirectory for lock files. Keeping them out of the
// task directory means listing never sees them.
const locksDirName = ".locks"

// LockTimeout bounds how long a writer waits for a lock when the context has
// no earlier deadline.
const LockTimeout = 2 * time.Second

// lockRetryInterval is the pause between non-blocking lock attempts.
const lockRetryInterval = 10 * time.Millisecond

// Lock errors.
var (
	errLockTimeout  = errors.New("lock timeout")
	errLockFileOpen = errors.New("failed to open lock file")
)

// WithLock runs handler while holding an exclusive lock on path.
func WithLock(ctx context.Context, path string, handler func() error) error {
	lock, err := acquireLock(ctx, path)
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}

	defer lock.release()

	return handler()
}

// WithTaskLock gives handler the current content of the task file at path
// under lock. Returned content replaces the file atomically. A nil result
// means nothing is written, and an error aborts without writing.
func WithTaskLock(ctx context.Context, path string, handler func(content []byte) ([]byte, error)) error {
	return WithLock(ctx, path, func() error {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading task: %w", err)
		}

		newContent, err := handler(content)
		if err != nil {
			return err
		}

		if newContent == nil {
			return nil
		}

		err = atomic.WriteFile(path, strings.NewReader(string(newContent)))
		if err != nil {
			return fmt.Errorf("writing task: %w", err)
		}

		return nil
	})
}

type fileLock struct {
	path string
	file *os.File
}

// release removes the lock file while still holding the lock, then unlocks.
func (l *fileLock) release() {
	if l.file == nil {
		return
	}

	_ = os.Remove(l.path)
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
}

// acquireLock takes an exclusive flock on <dir>/.locks/<base>.lock. A holder
// removes the lock file on release, so after locking the inode at the path is
// compared with the one locked and the attempt restarts on mismatch.
func acquireLock(ctx context.Context, path string) (*fileLock, error) {
	ctx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()

	locksDir := filepath.Join(filepath.Dir(path), locksDirName)
	lockPath := filepath.Join(locksDir, filepath.Base(path)+".lock")

	for {
		err := os.MkdirAll(locksDir, dirPerms)
		if err != nil {
			return nil, fmt.Errorf("creating locks dir: %w", err)
		}

		lock, locked, err := tryLock(lockPath)
		if err != nil {
			return nil, err
		}

		if locked {
			return lock, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		case <-time.After(lockRetryInterval):
		}
	}
}

func tryLock(lockPath string) (*fileLock, bool, error) {
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerms)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", errLockFileOpen, err)
	}

	fd := int(file.Fd())

	var opened unix.Stat_t

	err = unix.Fstat(fd, &opened)
	if err != nil {
		_ = file.Close()

		return nil, false, fmt.Errorf("fstat lock file: %w", err)
	}

	err = unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = file.Close()

		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("flock: %w", err)
	}

	var current unix.Stat_t

	err = unix.Stat(lockPath, &current)
	if err != nil || current.Ino != opened.Ino {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = file.Close()

		return nil, false, nil
	}

	return &fileLock{path: lockPath, file: file}, true, nil
}
