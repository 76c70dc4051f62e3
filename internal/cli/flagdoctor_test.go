package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFlags(t *testing.T) {
	globals := &Globals{Format: "ndjson", Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	require.Error(t, validateFlags(globals, true, ""))
	require.NoError(t, validateFlags(globals, true, "map.yaml"))
	require.NoError(t, validateFlags(globals, false, ""))

	stderr := &bytes.Buffer{}
	globals = &Globals{Format: "xml", Stdout: &bytes.Buffer{}, Stderr: stderr}
	require.Error(t, validateFlags(globals, false, ""))
	assert.Contains(t, stderr.String(), "unknown output format xml")
}
