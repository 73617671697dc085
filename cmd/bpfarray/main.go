// bpfarray is a registry and inspection tool for managed BPF array
// maps.
package main

import (
	"github.com/alecthomas/kong"

	"github.com/frobware/go-bpfarray/cmd/bpfarray/cli"
)

func main() {
	var c cli.CLI
	kctx := kong.Parse(&c, cli.KongOptions()...)
	kctx.FatalIfErrorf(kctx.Run(&c))
}
