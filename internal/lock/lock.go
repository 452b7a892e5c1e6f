// Package lock serializes pipeline writes across pipegen processes.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrHeld indicates another process holds the lock.
var ErrHeld = errors.New("lock held by another process")

// Dir is the lock directory relative to the project root.
const Dir = ".pipegen/locks"

// Lock is an exclusive flock on a file under the project root.
type Lock struct {
	name string
	path string
	file *os.File
}

// New creates a lock named after the operation it guards.
func New(root, operation string) *Lock {
	return &Lock{
		name: operation,
		path: filepath.Join(root, filepath.FromSlash(Dir), operation+".lock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking.
// Returns an error wrapping ErrHeld if another process holds it.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		l.file = nil
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return fmt.Errorf("another %s is already running (pid %s): %w", l.name, l.holder(), ErrHeld)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// PID for the error message of the next contender
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// holder returns the PID recorded by the current lock holder, or "unknown".
func (l *Lock) holder() string {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "unknown"
	}
	pid := strings.TrimSpace(string(data))
	if pid == "" {
		return "unknown"
	}
	return pid
}

// Release unlocks and removes the lock file. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("release lock: %w", err)
	}

	l.file.Close()
	os.Remove(l.path)
	l.file = nil

	return nil
}

// WithLock runs fn while holding the operation's lock.
func WithLock(root, operation string, fn func() error) error {
	lock := New(root, operation)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
