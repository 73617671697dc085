package cli

import (
	"context"
	"fmt"
)

// DeleteCmd deletes a managed map: handle, pin and registry record.
type DeleteCmd struct {
	Name string `arg:"" help:"Map name."`
}

func (c *DeleteCmd) Run(cli *CLI) error {
	return cli.WithWriterLock(context.Background(), func(ctx context.Context) error {
		mgr, cleanup, err := cli.Manager(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := mgr.Delete(ctx, c.Name); err != nil {
			return err
		}

		fmt.Printf("deleted %s\n", c.Name)
		return nil
	})
}
