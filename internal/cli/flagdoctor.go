package cli

// validateFlags centralizes flag combinations that cannot work together.
func validateFlags(globals *Globals, watch bool, mapFile string) error {
	// config files bypass kong's enum check
	if globals != nil && globals.Format != "text" && globals.Format != "ndjson" {
		format := globals.Format
		globals.Format = "text"
		return outputErrorCommon(globals, "INVALID_FLAGS", "unknown output format "+format, "use --format text or --format ndjson")
	}
	// nothing to watch without a mapping file
	if watch && mapFile == "" {
		return outputErrorCommon(globals, "INVALID_FLAGS", "--watch requires a mapping file", "pass --map FILE or set map_file in the config")
	}
	return nil
}
