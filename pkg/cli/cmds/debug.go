package cmds

import (
	"github.com/urfave/cli/v2"
	"github.com/sirupsen/logrus"

	"github.com/aurae-runtime/aurae/pkg/version"
)

var (
	Debug     bool
	DebugFlag = &cli.BoolFlag{
		Name:        "debug",
		Aliases:     []string{"v"},
		Usage:       "(logging) turn on debug logs",
		Destination: &Debug,
		EnvVars:     []string{version.ProgramUpper + "_DEBUG"},
	}
)

// DebugContext wraps an action so debug-level logging is enabled before
// the action runs, the way the teacher's own DebugContext gates
// verbosity ahead of every subcommand.
func DebugContext(f cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if Debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
		if f != nil {
			return f(ctx)
		}
		return nil
	}
}
