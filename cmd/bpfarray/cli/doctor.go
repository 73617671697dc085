package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/frobware/go-bpfarray/bpffs"
	"github.com/frobware/go-bpfarray/inspect"
	"github.com/frobware/go-bpfarray/interpreter/store/sqlite"
)

// DoctorCmd checks the runtime environment: bpffs mount, registry
// database, and disagreements between the registry and the pins on
// disk.
type DoctorCmd struct{}

func (c *DoctorCmd) Run(cli *CLI) error {
	ctx := context.Background()

	dirs, err := cli.RuntimeDirs()
	if err != nil {
		return err
	}

	healthy := true

	mounted, err := bpffs.IsMounted(bpffs.DefaultMountInfoPath, dirs.FS())
	switch {
	case err != nil:
		fmt.Printf("bpffs at %s: check failed: %v\n", dirs.FS(), err)
		healthy = false
	case mounted:
		fmt.Printf("bpffs at %s: mounted\n", dirs.FS())
	default:
		fmt.Printf("bpffs at %s: NOT mounted\n", dirs.FS())
		healthy = false
	}

	dbPath := cli.DB
	if dbPath == "" {
		dbPath = dirs.DBPath()
	}
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Printf("registry db %s: %v\n", dbPath, err)
		fmt.Println("no registry to cross-check")
		if healthy {
			fmt.Println("ok (nothing managed yet)")
			return nil
		}
		return fmt.Errorf("environment checks failed")
	}
	fmt.Printf("registry db %s: present\n", dbPath)

	logger, err := cli.Logger()
	if err != nil {
		return err
	}
	st, err := sqlite.New(ctx, dbPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	scanner := bpffs.NewScanner(bpffs.ScannerDirs{
		FS:   dirs.FS(),
		Maps: dirs.FSMaps(),
	})

	snap, err := inspect.Take(ctx, st, scanner)
	if err != nil {
		return err
	}
	fmt.Printf("managed maps: %d\n", len(snap.Maps))

	for _, s := range snap.Orphans() {
		fmt.Printf("orphan pin: %s (no registry record)\n", s.PinPath)
		healthy = false
	}
	for _, s := range snap.MissingPins() {
		fmt.Printf("missing pin: %s expected at %s\n", s.Name, s.Record.PinPath)
		healthy = false
	}

	if !healthy {
		return fmt.Errorf("environment checks failed")
	}
	fmt.Println("ok")
	return nil
}
