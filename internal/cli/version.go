package cli

import (
	"fmt"

	"github.com/vburojevic/dbgpmap/internal/domain"
)

// VersionCmd shows version information
type VersionCmd struct{}

// VersionOutput represents the NDJSON output for version
type VersionOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	GoInstall     string `json:"go_install"`
}

const goInstallCmd = "go install github.com/vburojevic/dbgpmap/cmd/dbgpmap@latest"

// Run executes the version command
func (c *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return writeJSONLine(globals, VersionOutput{
			Type:          "version",
			SchemaVersion: domain.SchemaVersion,
			Version:       Version,
			Commit:        Commit,
			GoInstall:     goInstallCmd,
		})
	}
	fmt.Fprintf(globals.Stdout, "dbgpmap version %s (%s)\n", Version, Commit)
	fmt.Fprintf(globals.Stdout, "To upgrade: %s\n", goInstallCmd)
	return nil
}
