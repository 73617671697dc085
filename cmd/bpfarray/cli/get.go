package cli

import (
	"context"
	"os"

	"github.com/frobware/go-bpfarray/interpreter/store"
)

// GetCmd shows the registry record for one managed map.
type GetCmd struct {
	Name string `arg:"" help:"Map name."`

	OutputFlags
}

func (c *GetCmd) Run(cli *CLI) error {
	ctx := context.Background()

	mgr, cleanup, err := cli.Manager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := mgr.Get(ctx, c.Name)
	if err != nil {
		return err
	}

	if c.Format() == OutputJSON {
		return formatJSON(os.Stdout, rec)
	}
	return formatMapRecords(os.Stdout, []store.MapRecord{rec}, OutputTable)
}
