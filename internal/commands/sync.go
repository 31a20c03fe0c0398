// Package commands holds the thin CLI commands that drive the orchestrator;
// neither contains core logic.
package commands

import (
	"context"
	"fmt"

	"github.com/keshon/zsync/internal/cli"
	"github.com/keshon/zsync/internal/config"
	"github.com/keshon/zsync/internal/fs"
	"github.com/keshon/zsync/internal/middleware"
	"github.com/keshon/zsync/internal/observer"
	"github.com/keshon/zsync/internal/orchestrator"
)

// defaultsPath is where a caller may drop overrides for the package-level
// config constants, checked relative to the current directory.
const defaultsPath = "zsync.json"

// SyncCommand drives one assembly: "zsync sync <control-file-or-url> [target] [candidate...]".
type SyncCommand struct{}

func (c *SyncCommand) Name() string      { return "sync" }
func (c *SyncCommand) Short() string     { return "" }
func (c *SyncCommand) Aliases() []string { return nil }
func (c *SyncCommand) Usage() string     { return "sync <control-file-or-url> [target] [candidate...]" }
func (c *SyncCommand) Brief() string     { return "Assemble a target file from local candidates plus a remote diff" }
func (c *SyncCommand) Help() string {
	return `Assemble a target file described by a control file (local path or URL),
reusing as many bytes as possible from local candidate files before
fetching whatever remains missing over HTTP.

Usage:
  zsync sync <control-file-or-url> [target] [candidate...]

If target is omitted, it defaults to the base name of the control file's
path or URL with any ".zsync" suffix removed, in the current directory; the
control file's declared Filename is not consulted. Extra candidates are
scanned after target itself.`
}

func (c *SyncCommand) Run(ctx *cli.Context) error {
	if len(ctx.Args) < 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	controlLocation := ctx.Args[0]
	filesys := fs.NewOSFS()

	var target string
	var extra []string
	if len(ctx.Args) >= 2 {
		target = ctx.Args[1]
		extra = ctx.Args[2:]
	} else {
		target = deriveTargetName(controlLocation)
	}

	defaults, err := config.LoadDefaults(defaultsPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", defaultsPath, err)
	}

	return orchestrator.Run(context.Background(), orchestrator.Options{
		ControlFileLocation: controlLocation,
		TargetPath:          target,
		ExtraCandidates:     extra,
		FS:                  filesys,
		Observer:            observer.NewTerminal(),
		Defaults:            defaults,
	})
}

func deriveTargetName(controlLocation string) string {
	base := controlLocation
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	const suffix = ".zsync"
	if len(base) > len(suffix) && base[len(base)-len(suffix):] == suffix {
		base = base[:len(base)-len(suffix)]
	}
	if base == "" {
		base = "output"
	}
	return base
}

func init() {
	cli.RegisterCommand(
		cli.ApplyMiddlewares(&SyncCommand{},
			middleware.WithLocalInputCheck(fs.NewOSFS()),
			middleware.WithDebugArgsPrint(),
		),
	)
}
