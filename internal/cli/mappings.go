package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/vburojevic/dbgpmap/internal/config"
	"github.com/vburojevic/dbgpmap/internal/domain"
	"github.com/vburojevic/dbgpmap/internal/mapping"
)

// MappingFlags select where path mappings come from
type MappingFlags struct {
	Map      string   `short:"m" default:"${config_map_file}" help:"Mapping file (logical => physical lines, or .yaml)"`
	Contexts []string `short:"c" sep:"," help:"Extra cache contexts, comma separated (e.g. Development/Staging)"`
}

// inlineEntries returns the mappings declared in the config file
func inlineEntries(globals *Globals) []mapping.Entry {
	if globals == nil || globals.Config == nil {
		return nil
	}
	return lo.Map(globals.Config.Mappings, func(m config.Mapping, _ int) mapping.Entry {
		return mapping.Entry{Logical: m.Logical, Physical: m.Physical}
	})
}

// load builds the mapper: the mapping file first, then config mappings
func (f *MappingFlags) load(globals *Globals) (*mapping.Mapper, []mapping.Entry, error) {
	inline := inlineEntries(globals)
	var entries []mapping.Entry
	if f.Map != "" {
		fromFile, err := mapping.LoadFile(f.Map)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, fromFile...)
	}
	entries = append(entries, inline...)
	var contexts []string
	if globals != nil && globals.Config != nil {
		contexts = append(contexts, globals.Config.Contexts...)
	}
	contexts = append(contexts, f.Contexts...)
	return mapping.NewMapper(entries, contexts), inline, nil
}

// MappingsCmd prints the effective mapping table
type MappingsCmd struct {
	MappingFlags `embed:""`

	YAML bool `name:"yaml" help:"Write the table as a YAML mapping file"`
}

// MappingOutput is one table row in NDJSON output
type MappingOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Logical       string `json:"logical"`
	Physical      string `json:"physical"`
}

// Run executes the mappings command
func (c *MappingsCmd) Run(globals *Globals) error {
	mapper, _, err := c.load(globals)
	if err != nil {
		return outputErrorCommon(globals, "MAPPING_LOAD_FAILED", err.Error(), "check the mapping file syntax")
	}
	entries := mapper.Entries()

	if c.YAML {
		return mapping.WriteYAML(globals.Stdout, entries)
	}
	if globals.Format == "ndjson" {
		for _, e := range entries {
			if err := writeJSONLine(globals, MappingOutput{
				Type:          "mapping",
				SchemaVersion: domain.SchemaVersion,
				Logical:       e.Logical,
				Physical:      e.Physical,
			}); err != nil {
				return err
			}
		}
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(globals.Stdout, "No mappings configured")
		return nil
	}
	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("Logical", "Physical")
	for _, e := range entries {
		if err := table.Append(e.Logical, e.Physical); err != nil {
			return err
		}
	}
	return table.Render()
}

// ExpandCmd shows how a breakpoint file fans out
type ExpandCmd struct {
	MappingFlags `embed:""`

	Path string `arg:"" help:"Breakpoint file as the IDE sends it"`
}

// ExpandOutput is the NDJSON result of expand
type ExpandOutput struct {
	Type          string   `json:"type"`
	SchemaVersion int      `json:"schemaVersion"`
	Path          string   `json:"path"`
	Files         []string `json:"files"`
}

// Run executes the expand command
func (c *ExpandCmd) Run(globals *Globals) error {
	mapper, _, err := c.load(globals)
	if err != nil {
		return outputErrorCommon(globals, "MAPPING_LOAD_FAILED", err.Error(), "check the mapping file syntax")
	}
	files := mapper.Expand(c.Path)
	if globals.Format == "ndjson" {
		return writeJSONLine(globals, ExpandOutput{
			Type:          "expand",
			SchemaVersion: domain.SchemaVersion,
			Path:          c.Path,
			Files:         files,
		})
	}
	for _, f := range files {
		fmt.Fprintln(globals.Stdout, f)
	}
	return nil
}

// ContractCmd maps an engine path back to the IDE's view
type ContractCmd struct {
	MappingFlags `embed:""`

	Path string `arg:"" help:"File path as the engine reports it"`
}

// ContractOutput is the NDJSON result of contract
type ContractOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Path          string `json:"path"`
	Logical       string `json:"logical"`
}

// Run executes the contract command
func (c *ContractCmd) Run(globals *Globals) error {
	mapper, _, err := c.load(globals)
	if err != nil {
		return outputErrorCommon(globals, "MAPPING_LOAD_FAILED", err.Error(), "check the mapping file syntax")
	}
	logical := mapper.Contract(c.Path)
	if globals.Format == "ndjson" {
		return writeJSONLine(globals, ContractOutput{
			Type:          "contract",
			SchemaVersion: domain.SchemaVersion,
			Path:          c.Path,
			Logical:       logical,
		})
	}
	fmt.Fprintln(globals.Stdout, logical)
	return nil
}
