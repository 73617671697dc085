package cli

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/frobware/go-bpfarray"
	"github.com/frobware/go-bpfarray/interpreter/store"
)

func formatJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// formatMapRecords renders registry records as a table or JSON.
func formatMapRecords(w io.Writer, recs []store.MapRecord, format OutputFormat) error {
	if format == OutputJSON {
		return formatJSON(w, recs)
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKERNEL ID\tVALUE SIZE\tMAX ENTRIES\tPINNING\tPIN PATH\tCREATED")
	for _, rec := range recs {
		pinPath := rec.PinPath
		if pinPath == "" {
			pinPath = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			rec.Name,
			rec.KernelID,
			rec.ValueSize,
			rec.MaxEntries,
			bpfarray.PinningType(rec.Pinning).String(),
			pinPath,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return tw.Flush()
}

// formatValue renders raw value bytes. Values the width of a native
// integer are additionally decoded as unsigned little-endian, which
// covers the common counter case.
func formatValue(w io.Writer, value []byte, format OutputFormat) error {
	if format == OutputJSON {
		out := map[string]any{
			"hex": hex.EncodeToString(value),
			"len": len(value),
		}
		switch len(value) {
		case 4:
			out["u32"] = binary.LittleEndian.Uint32(value)
		case 8:
			out["u64"] = binary.LittleEndian.Uint64(value)
		}
		return formatJSON(w, out)
	}

	switch len(value) {
	case 4:
		fmt.Fprintf(w, "%s (u32 %s)\n", hex.EncodeToString(value),
			strconv.FormatUint(uint64(binary.LittleEndian.Uint32(value)), 10))
	case 8:
		fmt.Fprintf(w, "%s (u64 %s)\n", hex.EncodeToString(value),
			strconv.FormatUint(binary.LittleEndian.Uint64(value), 10))
	default:
		fmt.Fprintf(w, "%s\n", hex.EncodeToString(value))
	}
	return nil
}
