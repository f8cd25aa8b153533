// Command auraed is the cell and executable runtime daemon. It binds a
// control socket, maintains the root cell registry, and — when cloned by
// a parent instance into an isolated cell — performs its own namespace
// setup before doing either of those things.
package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/aurae-runtime/aurae/pkg/cells/cell"
	"github.com/aurae-runtime/aurae/pkg/cells/cellregistry"
	"github.com/aurae-runtime/aurae/pkg/cells/nestedauraed"
	"github.com/aurae-runtime/aurae/pkg/cellservice"
	"github.com/aurae-runtime/aurae/pkg/cgroups"
	"github.com/aurae-runtime/aurae/pkg/cli/cmds"
	"github.com/aurae-runtime/aurae/pkg/flock"
	"github.com/aurae-runtime/aurae/pkg/proctitle"
	"github.com/aurae-runtime/aurae/pkg/runtimedir"
	"github.com/aurae-runtime/aurae/pkg/shutdown"
	"github.com/aurae-runtime/aurae/pkg/signals"
	"github.com/aurae-runtime/aurae/pkg/util/permissions"
	"github.com/aurae-runtime/aurae/pkg/version"
)

func main() {
	if nestedauraed.IsChild() {
		if err := runNested(); err != nil {
			logrus.Fatalf("nested auraed: %v", err)
		}
		return
	}

	app := cmds.NewApp()
	app.Action = cmds.InitLogging(cmds.DebugContext(run))

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// runNested is the entry point taken by a process cloned by
// nestedauraed.Start: it performs the mount/hostname/network setup for
// its own namespaces, then binds only the control socket its parent is
// waiting to dial, skipping the CLI flag parsing and root registry setup
// a top-level daemon does.
func runNested() error {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	proctitle.SetProcTitle(fmt.Sprintf("%s: cell %s", version.Program, nestedauraed.ChildCellName()))

	if err := nestedauraed.SetupChild(); err != nil {
		return err
	}

	sockPath := nestedauraed.ChildSocketPath()
	lis, err := net.Listen("unix", sockPath)
	if err != nil {
		return errors.Wrapf(err, "nested auraed: listen on %s", sockPath)
	}

	srv := newGRPCServer()
	logrus.Infof("nested auraed: cell %q serving on %s", nestedauraed.ChildCellName(), sockPath)
	return srv.Serve(lis)
}

func run(ctx *cli.Context) error {
	if err := permissions.IsPrivileged(); err != nil {
		return errors.Wrap(err, "auraed must run as root")
	}
	if err := cgroups.Validate(cmds.CgroupRoot); err != nil {
		return errors.Wrap(err, "cgroup preflight check")
	}

	runtimeDir, err := runtimedir.Runtime(cmds.RuntimeDir)
	if err != nil {
		return err
	}
	if err := runtimedir.EnsureDir(runtimeDir, 0o750); err != nil {
		return err
	}

	lockPath := filepath.Join(runtimeDir, "auraed.lock")
	lock, err := flock.Acquire(lockPath)
	if err != nil {
		return errors.Wrapf(err, "acquiring instance lock %s", lockPath)
	}
	defer flock.Release(lock)

	bcast := shutdown.NewBroadcaster()
	env := cell.Env{CgroupRoot: cmds.CgroupRoot, RuntimeDir: runtimeDir, Shutdown: bcast}
	registry := cellregistry.New(env)
	svc := cellservice.New(registry)

	srv := newGRPCServer()

	sockPath := filepath.Join(runtimeDir, cmds.Socket)
	_ = os.Remove(sockPath)
	unixLis, err := net.Listen("unix", sockPath)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", sockPath)
	}
	if err := os.Chmod(sockPath, 0o770); err != nil {
		return errors.Wrapf(err, "chmod %s", sockPath)
	}
	logrus.Infof("%s: listening on unix socket %s", version.Program, sockPath)

	go func() {
		if err := srv.Serve(unixLis); err != nil {
			logrus.Errorf("unix listener stopped: %v", err)
		}
	}()

	if cmds.TCPAddr != "" {
		tcpLis, err := net.Listen("tcp", cmds.TCPAddr)
		if err != nil {
			return errors.Wrapf(err, "listen on %s", cmds.TCPAddr)
		}
		logrus.Infof("%s: listening on tcp %s", version.Program, cmds.TCPAddr)
		go func() {
			if err := srv.Serve(tcpLis); err != nil {
				logrus.Errorf("tcp listener stopped: %v", err)
			}
		}()
	}

	signalCtx := signals.SetupSignalContext()
	<-signalCtx.Done()

	logrus.Infof("%s: shutdown requested", version.Program)
	bcast.Broadcast()
	bcast.Await()

	srv.GracefulStop()
	svc.Shutdown()

	return nil
}

func newGRPCServer() *grpc.Server {
	srv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	reflection.Register(srv)
	return srv
}
