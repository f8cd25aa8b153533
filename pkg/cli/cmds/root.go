// Package cmds wires auraed's command-line surface: flags, environment
// variable fallbacks, and debug-level logging setup, in the style of the
// teacher's own pkg/cli/cmds package.
package cmds

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/aurae-runtime/aurae/pkg/version"
)

var (
	RuntimeDir string
	CgroupRoot string
	Socket     string
	TCPAddr    string

	RuntimeDirFlag = &cli.StringFlag{
		Name:        "runtime-dir",
		Usage:       "directory holding the control socket and per-cell sockets",
		Destination: &RuntimeDir,
		EnvVars:     []string{"AURAE_RUNTIME_DIR"},
	}
	CgroupRootFlag = &cli.StringFlag{
		Name:        "cgroup-root",
		Usage:       "cgroup v2 mountpoint cells are created under",
		Value:       "/sys/fs/cgroup",
		Destination: &CgroupRoot,
	}
	SocketFlag = &cli.StringFlag{
		Name:        "socket",
		Usage:       "unix socket name within runtime-dir the control API listens on",
		Value:       "auraed.sock",
		Destination: &Socket,
	}
	TCPAddrFlag = &cli.StringFlag{
		Name:        "tcp-addr",
		Usage:       "optional TCP address (host daemon only) the control API also listens on",
		Destination: &TCPAddr,
		EnvVars:     []string{"AURAE_TCP_ADDR"},
	}
)

// NewApp builds the auraed CLI application shell.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = version.Program
	app.Usage = "cell and executable runtime daemon"
	app.Version = fmt.Sprintf("%s (%s)", version.Version, version.GitCommit)
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("%s version %s\n", app.Name, app.Version)
		fmt.Printf("go version %s\n", runtime.Version())
	}
	app.Flags = []cli.Flag{
		DebugFlag,
		RuntimeDirFlag,
		CgroupRootFlag,
		SocketFlag,
		TCPAddrFlag,
		VerbosityFlag,
		LogFileFlag,
		AlsoLogToStderrFlag,
	}
	return app
}
