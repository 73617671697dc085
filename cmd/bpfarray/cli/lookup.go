package cli

import (
	"context"
	"fmt"
	"os"
)

// LookupCmd reads the value at an index in a managed map.
type LookupCmd struct {
	Name  string `arg:"" help:"Map name."`
	Index uint32 `arg:"" help:"Array index."`

	OutputFlags
}

func (c *LookupCmd) Run(cli *CLI) error {
	ctx := context.Background()

	mgr, cleanup, err := cli.Manager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	value, err := mgr.Lookup(ctx, c.Name, c.Index)
	if err != nil {
		return err
	}

	// An absent slot is a routine outcome, not an error: the index
	// may be out of range or the slot never written.
	if value.IsNone() {
		if c.Format() == OutputJSON {
			return formatJSON(os.Stdout, map[string]any{"absent": true})
		}
		fmt.Println("absent")
		return nil
	}

	return formatValue(os.Stdout, value.Unwrap(), c.Format())
}
