package middleware

import (
	"fmt"

	"github.com/keshon/zsync/internal/cli"
	"github.com/keshon/zsync/internal/fs"
)

// WithLocalInputCheck rejects a sync invocation up front if any
// caller-supplied extra candidate path (ctx.Args[2:]) names something that
// does not exist, rather than letting the orchestrator silently skip it
// during candidate resolution. The control-file argument (ctx.Args[0], which
// may be a URL) and the target argument (ctx.Args[1], which legitimately may
// not exist yet — that's the whole point of a first sync) are both left to
// the orchestrator.
func WithLocalInputCheck(filesys fs.FS) cli.Middleware {
	return func(cmd cli.Command) cli.Command {
		return &cli.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *cli.Context) error {
				if len(ctx.Args) > 2 {
					for _, p := range ctx.Args[2:] {
						if !filesys.Exists(p) {
							return fmt.Errorf("candidate input %q does not exist", p)
						}
					}
				}
				return cmd.Run(ctx)
			},
		}
	}
}
