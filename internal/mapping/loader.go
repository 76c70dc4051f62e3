package mapping

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const separator = "=>"

// ParseText reads mappings in the line format `logical => physical`. Blank
// lines and lines starting with # are skipped.
func ParseText(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		logical, physical, ok := strings.Cut(line, separator)
		if !ok {
			return nil, fmt.Errorf("line %d: missing %q separator", lineNo, separator)
		}
		logical = strings.TrimSpace(logical)
		physical = strings.TrimSpace(physical)
		if logical == "" || physical == "" {
			return nil, fmt.Errorf("line %d: empty path", lineNo)
		}
		entries = append(entries, Entry{Logical: logical, Physical: physical})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mappings: %w", err)
	}
	return entries, nil
}

// ParseYAML reads a YAML list of {logical, physical} objects.
func ParseYAML(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode mappings: %w", err)
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Logical) == "" || strings.TrimSpace(e.Physical) == "" {
			return nil, fmt.Errorf("entry %d: empty path", i+1)
		}
		entries[i] = Entry{Logical: strings.TrimSpace(e.Logical), Physical: strings.TrimSpace(e.Physical)}
	}
	return entries, nil
}

// LoadFile loads a mapping file, picking the format from its extension.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	if isYAML(path) {
		entries, err = ParseYAML(f)
	} else {
		entries, err = ParseText(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// WriteYAML writes entries in the format ParseYAML reads.
func WriteYAML(w io.Writer, entries []Entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
