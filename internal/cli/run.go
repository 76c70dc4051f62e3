package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vburojevic/dbgpmap/internal/mapping"
	"github.com/vburojevic/dbgpmap/internal/relay"
	"go.uber.org/zap"
)

// RunCmd relays DBGp sessions until interrupted
type RunCmd struct {
	MappingFlags `embed:""`

	Bind        string        `short:"I" default:"${config_bind}" help:"Address to accept debugger engine connections on"`
	Port        int           `short:"P" default:"${config_port}" help:"Port to accept debugger engine connections on"`
	IDEHost     string        `short:"i" name:"ide-host" default:"${config_ide_host}" help:"Host the IDE listens on"`
	IDEPort     int           `short:"p" name:"ide-port" default:"${config_ide_port}" help:"Port the IDE listens on"`
	Watch       bool          `default:"${config_watch}" help:"Reload the mapping file when it changes (applied between sessions)"`
	DialTimeout time.Duration `default:"${config_dial_timeout}" help:"How long to wait for the IDE to accept a connection"`
}

// Run executes the run command
func (c *RunCmd) Run(globals *Globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return c.run(ctx, globals)
}

func (c *RunCmd) run(ctx context.Context, globals *Globals) error {
	if err := validateFlags(globals, c.Watch, c.Map); err != nil {
		return err
	}

	mapper, inline, err := c.load(globals)
	if err != nil {
		return outputErrorCommon(globals, "MAPPING_LOAD_FAILED", err.Error(), "check the mapping file syntax")
	}

	log := newLogger(globals)
	defer log.Sync()

	engine := relay.New(relay.Config{
		ListenAddr:  joinHostPort(c.Bind, c.Port),
		IDEAddr:     joinHostPort(c.IDEHost, c.IDEPort),
		DialTimeout: c.DialTimeout,
	}, mapper, relay.WithLogger(log), relay.WithReporter(newReporter(globals)))

	if err := engine.Listen(); err != nil {
		return outputErrorCommon(globals, "LISTEN_FAILED", err.Error(), "another process may own the port; choose one with -P")
	}

	if c.Watch {
		w, err := mapping.NewWatcher(c.Map, func(entries []mapping.Entry) {
			engine.ReloadMappings(ctx, append(entries, inline...))
		}, log)
		if err != nil {
			return outputErrorCommon(globals, "WATCH_FAILED", err.Error())
		}
		defer w.Close()
		go w.Run(ctx)
		log.Debug("watching mapping file", zap.String("path", c.Map))
	}

	return engine.Serve(ctx)
}
