package middleware

import (
	"fmt"

	"github.com/keshon/zsync/internal/cli"
	"github.com/keshon/zsync/internal/config"
)

// WithDebugArgsPrint echoes the parsed command-line arguments before
// running cmd, gated on config.IsDev so it never fires in a release build.
func WithDebugArgsPrint() cli.Middleware {
	return func(cmd cli.Command) cli.Command {
		return &cli.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *cli.Context) error {
				if config.IsDev {
					fmt.Printf("args: %+v\n", ctx.Args)
				}
				return cmd.Run(ctx)
			},
		}
	}
}
