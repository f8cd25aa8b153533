package cmds

import (
	"io"
	"os"
	"sync"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Verbosity and log file destination, mirroring the teacher's own
// --v / --log flag pair, minus the reexec-based log capture: logrus
// already writes wherever we point it, so no child process is needed
// just to redirect output to a file.
var (
	Verbosity       int
	LogFile         string
	AlsoLogToStderr bool

	VerbosityFlag = &cli.IntFlag{
		Name:        "verbosity",
		Usage:       "(logging) number for the log level verbosity",
		Destination: &Verbosity,
	}
	LogFileFlag = &cli.StringFlag{
		Name:        "log",
		Aliases:     []string{"l"},
		Usage:       "(logging) log to file, rotated via lumberjack",
		Destination: &LogFile,
	}
	AlsoLogToStderrFlag = &cli.BoolFlag{
		Name:        "alsologtostderr",
		Usage:       "(logging) log to standard error as well as file (if set)",
		Destination: &AlsoLogToStderr,
	}

	logSetupOnce sync.Once
)

// InitLogging configures logrus's output and level exactly once, then
// runs action. cmd/auraed wraps the app's Action with it.
func InitLogging(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		logSetupOnce.Do(setupLogging)
		if action != nil {
			return action(ctx)
		}
		return nil
	}
}

func setupLogging() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if LogFile == "" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   LogFile,
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	var out io.Writer = rotator
	if AlsoLogToStderr {
		out = io.MultiWriter(rotator, os.Stderr)
	}
	logrus.SetOutput(out)
}
