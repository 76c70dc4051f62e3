package cli

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/dbgpmap/internal/config"
	"github.com/vburojevic/dbgpmap/internal/output"
	"github.com/vburojevic/dbgpmap/internal/relay"
)

// Version information (set via ldflags)
var (
	Version = "dev"
	Commit  = "none"
)

// CLI is the root command
type CLI struct {
	Format  string `default:"${config_format}" enum:"text,ndjson" help:"Status output format (text or ndjson)"`
	Quiet   bool   `short:"q" help:"Suppress status output"`
	Verbose bool   `short:"v" help:"Log every relayed message to stderr"`

	Run      RunCmd      `cmd:"" default:"withargs" help:"Relay DBGp sessions between the debugger engine and the IDE"`
	Mappings MappingsCmd `cmd:"" help:"Print the effective path mapping table"`
	Expand   ExpandCmd   `cmd:"" help:"Show every file a breakpoint on PATH is set on"`
	Contract ContractCmd `cmd:"" help:"Show the IDE path for a path reported by the engine"`
	Schema   SchemaCmd   `cmd:"" help:"Output JSON Schema for NDJSON status events"`
	Config   ConfigCmd   `cmd:"" help:"Show or manage configuration"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// Globals holds global flags and resolved configuration
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
}

// NewGlobalsWithConfig creates Globals from parsed flags, falling back to config
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	format := c.Format
	if format == "" {
		format = cfg.Format
	}
	return &Globals{
		Format:  format,
		Quiet:   c.Quiet || cfg.Quiet,
		Verbose: c.Verbose || cfg.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}
}

// KongVars exposes config values as flag defaults
func KongVars(cfg *config.Config) kong.Vars {
	bind, port := splitHostPort(cfg.Listen, "0.0.0.0", 9000)
	ideHost, idePort := splitHostPort(cfg.IDE, "127.0.0.1", 9001)
	return kong.Vars{
		"config_format":       cfg.Format,
		"config_bind":         bind,
		"config_port":         strconv.Itoa(port),
		"config_ide_host":     ideHost,
		"config_ide_port":     strconv.Itoa(idePort),
		"config_map_file":     cfg.MapFile,
		"config_watch":        strconv.FormatBool(cfg.Watch),
		"config_dial_timeout": cfg.DialTimeoutDuration().String(),
	}
}

func splitHostPort(addr, defHost string, defPort int) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defHost, defPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, defPort
	}
	return host, port
}

// newReporter picks the status writer for the configured format
func newReporter(globals *Globals) relay.Reporter {
	switch {
	case globals.Quiet:
		return output.Discard{}
	case globals.Format == "ndjson":
		return output.NewNDJSONWriter(globals.Stdout)
	default:
		return output.NewTextWriter(globals.Stdout)
	}
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(strings.TrimSpace(host), strconv.Itoa(port))
}

func writeJSONLine(globals *Globals, v interface{}) error {
	if err := output.NewNDJSONWriter(globals.Stdout).Write(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
