// Package ebpf provides kernel map operations using cilium/ebpf.
package ebpf

import (
	"log/slog"

	"github.com/frobware/go-bpfarray/interpreter"
)

// kernelAdapter implements interpreter.KernelMapOperations using
// cilium/ebpf.
type kernelAdapter struct {
	logger *slog.Logger
}

// Option configures a kernelAdapter.
type Option func(*kernelAdapter)

// WithLogger sets the logger for kernel operations.
func WithLogger(logger *slog.Logger) Option {
	return func(k *kernelAdapter) {
		k.logger = logger
	}
}

// New creates a new kernel adapter.
func New(opts ...Option) interpreter.KernelMapOperations {
	k := &kernelAdapter{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}
