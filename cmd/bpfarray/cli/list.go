package cli

import (
	"context"
	"os"
)

// ListCmd lists all managed maps.
type ListCmd struct {
	OutputFlags
}

func (c *ListCmd) Run(cli *CLI) error {
	ctx := context.Background()

	mgr, cleanup, err := cli.Manager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	recs, err := mgr.List(ctx)
	if err != nil {
		return err
	}

	return formatMapRecords(os.Stdout, recs, c.Format())
}
