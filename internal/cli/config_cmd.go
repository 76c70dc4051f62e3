package cli

import (
	"fmt"
	"strings"

	"github.com/vburojevic/dbgpmap/internal/config"
	"github.com/vburojevic/dbgpmap/internal/domain"
	"gopkg.in/yaml.v3"
)

// ConfigCmd groups the configuration subcommands
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"1" help:"Show the effective configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show which config file is used"`
	Generate ConfigGenerateCmd `cmd:"" help:"Print a sample config file"`
}

// ConfigShowCmd prints the effective configuration
type ConfigShowCmd struct{}

// ConfigOutput is the NDJSON form of the effective configuration
type ConfigOutput struct {
	Type          string           `json:"type"`
	SchemaVersion int              `json:"schemaVersion"`
	File          string           `json:"file,omitempty"`
	Format        string           `json:"format"`
	Quiet         bool             `json:"quiet"`
	Verbose       bool             `json:"verbose"`
	Listen        string           `json:"listen"`
	IDE           string           `json:"ide"`
	DialTimeout   string           `json:"dial_timeout"`
	MapFile       string           `json:"map_file,omitempty"`
	Watch         bool             `json:"watch"`
	Contexts      []string         `json:"contexts,omitempty"`
	Mappings      []config.Mapping `json:"mappings,omitempty"`
}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		return writeJSONLine(globals, ConfigOutput{
			Type:          "config",
			SchemaVersion: domain.SchemaVersion,
			File:          config.ConfigFile(),
			Format:        cfg.Format,
			Quiet:         cfg.Quiet,
			Verbose:       cfg.Verbose,
			Listen:        cfg.Listen,
			IDE:           cfg.IDE,
			DialTimeout:   cfg.DialTimeout,
			MapFile:       cfg.MapFile,
			Watch:         cfg.Watch,
			Contexts:      cfg.Contexts,
			Mappings:      cfg.Mappings,
		})
	}

	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintln(globals.Stdout)
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		fmt.Fprintf(globals.Stdout, "  %s\n", line)
	}
	return nil
}

// ConfigPathCmd prints the config file in use
type ConfigPathCmd struct{}

// ConfigPathOutput is the NDJSON form of config path
type ConfigPathOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Path          string `json:"path"`
}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()
	if globals.Format == "ndjson" {
		return writeJSONLine(globals, ConfigPathOutput{Type: "config_path", SchemaVersion: domain.SchemaVersion, Path: path})
	}
	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "Searched: ./dbgpmap.yaml, ~/.dbgpmap.yaml, <user config dir>/dbgpmap/dbgpmap.yaml, /etc/dbgpmap/dbgpmap.yaml")
		return nil
	}
	fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	return nil
}

// ConfigGenerateCmd prints a sample config file
type ConfigGenerateCmd struct{}

const sampleConfig = `# dbgpmap configuration file
# Place at ./dbgpmap.yaml, ~/.dbgpmap.yaml or /etc/dbgpmap/dbgpmap.yaml
# Every key can also be set as DBGPMAP_<KEY>, e.g. DBGPMAP_IDE=127.0.0.1:9003

# Status output: text or ndjson
format: text
quiet: false
# Log every relayed message to stderr
verbose: false

# Where debugger engines connect
listen: 0.0.0.0:9000
# Where the IDE listens for debugger connections
ide: 127.0.0.1:9001
dial_timeout: 5s

# Mapping file: "logical => physical" lines, or a YAML list when it ends in .yaml
map_file: ""
# Reload map_file when it changes; applied between sessions
watch: false

# Cache contexts in addition to Development, Testing and Production
contexts: []

# Inline mappings, applied after map_file
mappings:
  # - logical: /Users/me/project
  #   physical: /var/www/project
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	_, err := fmt.Fprint(globals.Stdout, sampleConfig)
	return err
}
