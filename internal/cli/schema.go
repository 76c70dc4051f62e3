package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// schemaTypes lists the NDJSON status events in the order they are documented
var schemaTypes = []string{"ready", "session_start", "session_end", "warning", "error"}

// SchemaCmd outputs JSON Schema for dbgpmap status events
type SchemaCmd struct {
	Type []string `short:"t" help:"Event types to include (ready,session_start,session_end,warning,error). Default: all"`
}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	schemas := map[string]interface{}{
		"ready":         readySchema(),
		"session_start": sessionStartSchema(),
		"session_end":   sessionEndSchema(),
		"warning":       warningSchema(),
		"error":         errorSchema(),
	}

	// Determine which schemas to output
	typesToOutput := lo.Map(c.Type, func(t string, _ int) string { return strings.ToLower(strings.TrimSpace(t)) })
	if len(typesToOutput) == 0 {
		typesToOutput = schemaTypes
	}
	if unknown := lo.Without(typesToOutput, schemaTypes...); len(unknown) > 0 {
		return outputErrorCommon(globals, "INVALID_SCHEMA_TYPE", fmt.Sprintf("unknown event type: %s", strings.Join(unknown, ", ")), "valid types: "+strings.Join(schemaTypes, ","))
	}

	defs := map[string]interface{}{}
	for _, t := range typesToOutput {
		defs[t] = schemas[t]
	}
	output := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "dbgpmap Status Event Schemas",
		"description": "JSON Schema definitions for every dbgpmap NDJSON status event",
		"definitions": defs,
	}

	// Output as JSON
	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func typeProp(name string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "const": name}
}

func schemaVersionProp() map[string]interface{} {
	return map[string]interface{}{"type": "integer", "const": 1}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func readySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Ready",
		"description": "The relay is listening for debugger engine connections",
		"properties": map[string]interface{}{
			"type":          typeProp("ready"),
			"schemaVersion": schemaVersionProp(),
			"listen":        stringProp("Bound listener address"),
			"ide":           stringProp("Address dialed for each session"),
			"mappings":      intProp("Number of loaded path mappings"),
			"contexts": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Cache contexts used to expand breakpoint files",
			},
			"timestamp": map[string]interface{}{
				"type":        "string",
				"format":      "date-time",
				"description": "ISO8601 timestamp",
			},
		},
		"required": []string{"type", "schemaVersion", "listen", "ide", "mappings", "timestamp"},
	}
}

func sessionStartSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session Start",
		"description": "An engine connection was paired with a new IDE connection",
		"properties": map[string]interface{}{
			"type":          typeProp("session_start"),
			"schemaVersion": schemaVersionProp(),
			"alert": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"SESSION_REPLACED"},
				"description": "Set when a live session was reset for this one",
			},
			"session": intProp("Session number, starting at 1"),
			"engine":  stringProp("Remote address of the debugger engine"),
			"ide":     stringProp("Address of the IDE"),
			"timestamp": map[string]interface{}{
				"type":        "string",
				"format":      "date-time",
				"description": "ISO8601 timestamp",
			},
		},
		"required": []string{"type", "schemaVersion", "session", "engine", "ide", "timestamp"},
	}
}

func sessionEndSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Session End",
		"description": "A session was reset and both of its connections closed",
		"properties": map[string]interface{}{
			"type":          typeProp("session_end"),
			"schemaVersion": schemaVersionProp(),
			"session":       intProp("Session number that ended"),
			"reason": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"engine_closed", "ide_closed", "replaced", "invalid_packet", "write_failed", "shutdown"},
				"description": "Why the session ended",
			},
			"summary": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"commands":         intProp("IDE commands received"),
					"breakpoints":      intProp("Breakpoint commands that fanned out to cache files"),
					"forwarded":        intProp("Commands written to the engine"),
					"packets":          intProp("Engine packets relayed to the IDE"),
					"rewrites":         intProp("Path attributes rewritten"),
					"duration_seconds": intProp("Session lifetime"),
				},
			},
		},
		"required": []string{"type", "schemaVersion", "session", "reason", "summary"},
	}
}

func warningSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Warning",
		"description": "A recoverable condition; the relay keeps listening",
		"properties": map[string]interface{}{
			"type":          typeProp("warning"),
			"schemaVersion": schemaVersionProp(),
			"code": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"IDE_UNREACHABLE", "ACCEPT_FAILED", "INVALID_PACKET", "MAPPINGS_RELOADED"},
				"description": "Machine-readable warning code",
			},
			"message": stringProp("Human-readable description"),
		},
		"required": []string{"type", "schemaVersion", "code", "message"},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "A fatal command error",
		"properties": map[string]interface{}{
			"type":          typeProp("error"),
			"schemaVersion": schemaVersionProp(),
			"code":          stringProp("Error code (e.g. LISTEN_FAILED, MAPPING_LOAD_FAILED)"),
			"message":       stringProp("Human-readable error description"),
			"hint":          stringProp("Suggested fix"),
		},
		"required": []string{"type", "schemaVersion", "code", "message"},
	}
}
