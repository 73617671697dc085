// Package lock provides a cross-process writer lock using flock(2)
// to serialise mutations of the bpfarray runtime state (pins and the
// registry database).
//
// Mutating code runs under Run(...) and receives a WriterScope, a
// non-forgeable token proving the lock is held for the duration of
// the callback. WriterScope is a capability, not a mutex: callers
// cannot construct, lock or unlock one themselves.
package lock

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"
)

// WriterScope represents the dynamic execution region in which the
// global bpfarray writer lock is held.
//
// The interface cannot be implemented outside this package due to the
// unexported marker method.
type WriterScope interface {
	// FD returns the raw lock file descriptor (for logging/diagnostics).
	FD() int

	writerScopeMarker()
}

type writerScope struct {
	f *os.File
}

func (*writerScope) writerScopeMarker() {}

func (s *writerScope) FD() int {
	return int(s.f.Fd())
}

// Run acquires the writer lock at lockPath, executes fn, then
// releases. Acquisition uses LOCK_EX|LOCK_NB with exponential backoff
// and respects ctx cancellation.
func Run(ctx context.Context, lockPath string, fn func(context.Context, WriterScope) error) error {
	f, err := acquireWriter(ctx, lockPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return fn(ctx, &writerScope{f: f})
}

func acquireWriter(ctx context.Context, path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	backoff := 25 * time.Millisecond
	const maxBackoff = 500 * time.Millisecond

	for {
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return f, nil
		}
		if err != syscall.EWOULDBLOCK {
			f.Close()
			return nil, fmt.Errorf("flock: %w", err)
		}

		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}
