package commands

import (
	"fmt"
	"os"

	"github.com/keshon/zsync/internal/cli"
	"github.com/keshon/zsync/internal/controlfile"
)

// InspectCommand decodes and prints a control file's header fields without
// assembling anything: "zsync inspect <control-file>".
type InspectCommand struct{}

func (c *InspectCommand) Name() string      { return "inspect" }
func (c *InspectCommand) Short() string     { return "" }
func (c *InspectCommand) Aliases() []string { return []string{"info"} }
func (c *InspectCommand) Usage() string     { return "inspect <control-file>" }
func (c *InspectCommand) Brief() string     { return "Print a control file's header without transferring anything" }
func (c *InspectCommand) Help() string {
	return `Decode a local control file and print its header fields, useful for
diagnosing a .zsync file without committing to a transfer.

Usage:
  zsync inspect <control-file>`
}

func (c *InspectCommand) Run(ctx *cli.Context) error {
	if len(ctx.Args) < 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	f, err := os.Open(ctx.Args[0])
	if err != nil {
		return fmt.Errorf("open %q: %w", ctx.Args[0], err)
	}
	defer f.Close()

	cf, err := controlfile.Decode(f)
	if err != nil {
		return err
	}

	h := cf.Header
	fmt.Printf("zsync:          %s\n", h.Version)
	fmt.Printf("filename:       %s\n", h.Filename)
	fmt.Printf("mtime:          %s\n", h.MTime)
	fmt.Printf("blocksize:      %d\n", h.BlockSize)
	fmt.Printf("length:         %d\n", h.Length)
	fmt.Printf("num-blocks:     %d\n", h.NumBlocks())
	fmt.Printf("hash-lengths:   %d,%d,%d\n", h.SequenceMatches, h.WeakLen, h.StrongLen)
	fmt.Printf("url:            %s\n", h.URL)
	fmt.Printf("sha-1:          %s\n", h.SHA1)
	return nil
}

func init() {
	cli.RegisterCommand(&InspectCommand{})
}
