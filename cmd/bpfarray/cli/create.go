package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/frobware/go-bpfarray"
)

// CreateCmd creates a managed array map.
type CreateCmd struct {
	Name       string `arg:"" help:"Map name (registry key and pin file name)."`
	ValueSize  uint32 `required:"" help:"Element size in bytes."`
	MaxEntries uint32 `required:"" help:"Number of array slots."`
	Flags      uint32 `help:"Map creation flags (BPF_F_*)." default:"0"`
	Pinned     bool   `help:"Pin the map by name so it outlives this process."`

	OutputFlags
}

func (c *CreateCmd) Run(cli *CLI) error {
	return cli.WithWriterLock(context.Background(), func(ctx context.Context) error {
		mgr, cleanup, err := cli.Manager(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		pinning := bpfarray.PinNone
		if c.Pinned {
			pinning = bpfarray.PinByName
		}
		def := bpfarray.NewDef(c.ValueSize, c.MaxEntries, c.Flags, pinning)

		info, err := mgr.Create(ctx, c.Name, def)
		if err != nil {
			return err
		}

		if c.Format() == OutputJSON {
			return formatJSON(os.Stdout, info)
		}
		fmt.Printf("created %s (kernel id %d)\n", c.Name, info.ID)
		return nil
	})
}
