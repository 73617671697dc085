// Package cli implements the bpfarray command line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/frobware/go-bpfarray/config"
	"github.com/frobware/go-bpfarray/interpreter/ebpf"
	"github.com/frobware/go-bpfarray/interpreter/store/sqlite"
	"github.com/frobware/go-bpfarray/lock"
	"github.com/frobware/go-bpfarray/logging"
	"github.com/frobware/go-bpfarray/manager"
)

// CLI is the root command structure for bpfarray.
type CLI struct {
	Base string `name:"base" help:"Runtime base directory." default:"${default_base}"`
	DB   string `name:"db" help:"SQLite database path. Defaults to {base}/db/state.db."`
	Log  string `name:"log" help:"Log spec (e.g. 'info,store=debug')." env:"BPFARRAY_LOG"`

	Create CreateCmd `cmd:"" help:"Create a managed array map."`
	List   ListCmd   `cmd:"" help:"List managed maps."`
	Get    GetCmd    `cmd:"" help:"Get details of a managed map."`
	Lookup LookupCmd `cmd:"" help:"Look up the value at an index in a managed map."`
	Delete DeleteCmd `cmd:"" help:"Delete a managed map."`
	Doctor DoctorCmd `cmd:"" help:"Check the runtime environment."`
}

// KongOptions returns the Kong configuration options for the CLI.
func KongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("bpfarray"),
		kong.Description("Registry and inspection tool for managed BPF array maps."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"default_base": config.DefaultBase,
		},
	}
}

// Logger creates a logger for CLI commands. Commands default to warn
// level for quieter output unless --log is specified.
func (c *CLI) Logger() (*slog.Logger, error) {
	spec := c.Log
	if spec == "" {
		spec = "warn"
	}
	return logging.New(logging.Options{CLISpec: spec})
}

// RuntimeDirs builds the runtime directory layout from --base.
func (c *CLI) RuntimeDirs() (config.RuntimeDirs, error) {
	base := c.Base
	if !filepath.IsAbs(base) {
		abs, err := filepath.Abs(base)
		if err != nil {
			return config.RuntimeDirs{}, err
		}
		base = abs
	}
	return config.NewRuntimeDirs(base)
}

// WithWriterLock runs fn under the cross-process writer lock.
// Mutating commands take this lock so concurrent bpfarray invocations
// cannot interleave pin and registry updates.
func (c *CLI) WithWriterLock(ctx context.Context, fn func(context.Context) error) error {
	dirs, err := c.RuntimeDirs()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dirs.Base(), 0o755); err != nil {
		return err
	}
	return lock.Run(ctx, dirs.Lock(), func(ctx context.Context, _ lock.WriterScope) error {
		return fn(ctx)
	})
}

// Manager builds a fully wired Manager. The returned cleanup
// function releases the store and any open kernel handles.
func (c *CLI) Manager(ctx context.Context) (*manager.Manager, func(), error) {
	logger, err := c.Logger()
	if err != nil {
		return nil, nil, err
	}

	dirs, err := c.RuntimeDirs()
	if err != nil {
		return nil, nil, err
	}

	dbPath := c.DB
	if dbPath == "" {
		dbPath = dirs.DBPath()
	}

	st, err := sqlite.New(ctx, dbPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	k := ebpf.New(ebpf.WithLogger(logger))
	mgr := manager.New(st, k, dirs, logger)

	cleanup := func() {
		mgr.Close()
		st.Close()
	}
	return mgr, cleanup, nil
}
