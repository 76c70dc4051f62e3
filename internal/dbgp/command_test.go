package dbgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expanderFunc func(string) []string

func (f expanderFunc) Expand(p string) []string { return f(p) }

func TestParseCommand(t *testing.T) {
	t.Run("bare and quoted values", func(t *testing.T) {
		cmd, err := ParseCommand(`breakpoint_set -i 3 -t line -f "file:///my src/a.php" -n 10`)
		require.NoError(t, err)

		assert.Equal(t, "breakpoint_set", cmd.Verb)
		require.Len(t, cmd.Args, 4)
		f, ok := cmd.Arg("f")
		require.True(t, ok)
		assert.Equal(t, "file:///my src/a.php", f)
		n, _ := cmd.Arg("n")
		assert.Equal(t, "10", n)
	})

	t.Run("escaped quotes", func(t *testing.T) {
		cmd, err := ParseCommand(`property_get -i 1 -n "$a[\"k\"]" -d 0`)
		require.NoError(t, err)
		n, _ := cmd.Arg("n")
		assert.Equal(t, `$a["k"]`, n)
	})

	t.Run("data section", func(t *testing.T) {
		cmd, err := ParseCommand(`breakpoint_set -i 5 -t conditional -f /a.php -n 3 -- JHggPiAz`)
		require.NoError(t, err)
		assert.Equal(t, "JHggPiAz", cmd.Data)
		assert.Len(t, cmd.Args, 4)
	})

	t.Run("flag without value at end", func(t *testing.T) {
		cmd, err := ParseCommand(`feature_get -i 1 -n`)
		require.NoError(t, err)
		v, ok := cmd.Arg("n")
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("errors", func(t *testing.T) {
		for _, line := range []string{"", "   ", `run -i "1`, "run stray"} {
			_, err := ParseCommand(line)
			assert.ErrorIs(t, err, ErrMalformedCommand, line)
		}
	})
}

func TestCommandStringKeepsOriginalSpelling(t *testing.T) {
	lines := []string{
		`breakpoint_set -i 3 -t line -f "file:///my src/a.php" -n 10`,
		`eval -i 9 -- JHggPiAz`,
		`property_get -i 1 -n "$a[\"k\"]" -d 0`,
		`feature_get -i 1 -n`,
	}
	for _, line := range lines {
		cmd, err := ParseCommand(line)
		require.NoError(t, err)
		assert.Equal(t, line, cmd.String())
	}
}

func TestSetArgQuotesWhenNeeded(t *testing.T) {
	cmd, err := ParseCommand(`breakpoint_set -i 1 -f /a.php`)
	require.NoError(t, err)

	cmd.SetArg("f", "/with space/a.php")
	assert.Equal(t, `breakpoint_set -i 1 -f "/with space/a.php"`, cmd.String())

	cmd.SetArg("f", `/q"uote.php`)
	assert.Equal(t, `breakpoint_set -i 1 -f "/q\"uote.php"`, cmd.String())

	cmd.SetArg("n", "7")
	assert.Equal(t, `breakpoint_set -i 1 -f "/q\"uote.php" -n 7`, cmd.String())

	reparsed, err := ParseCommand(cmd.String())
	require.NoError(t, err)
	f, _ := reparsed.Arg("f")
	assert.Equal(t, `/q"uote.php`, f)
}

func TestExpandCommand(t *testing.T) {
	fanOut := expanderFunc(func(p string) []string {
		return []string{p, "/cache/Development/" + p, "/cache/Testing/" + p}
	})
	identity := expanderFunc(func(p string) []string { return []string{p} })

	t.Run("breakpoint fans out per path", func(t *testing.T) {
		got := ExpandCommand(`breakpoint_set -f "/local/src/Foo.php" -n 10`, fanOut)
		assert.Equal(t, []string{
			`breakpoint_set -f /local/src/Foo.php -n 10`,
			`breakpoint_set -f /cache/Development//local/src/Foo.php -n 10`,
			`breakpoint_set -f /cache/Testing//local/src/Foo.php -n 10`,
		}, got)
	})

	t.Run("expanded commands keep transaction and data", func(t *testing.T) {
		got := ExpandCommand(`breakpoint_set -i 12 -t conditional -f /a.php -n 3 -- JHggPiAz`, fanOut)
		require.Len(t, got, 3)
		for _, line := range got {
			cmd, err := ParseCommand(line)
			require.NoError(t, err)
			id, _ := cmd.Arg("i")
			assert.Equal(t, "12", id)
			assert.Equal(t, "JHggPiAz", cmd.Data)
		}
	})

	t.Run("unchanged breakpoint forwarded byte for byte", func(t *testing.T) {
		line := `breakpoint_set  -i 1 -f "/a.php"   -n 2`
		assert.Equal(t, []string{line}, ExpandCommand(line, identity))
	})

	t.Run("other verbs untouched", func(t *testing.T) {
		for _, line := range []string{`run -i 4`, `source -i 5 -f /remote/a.php`, `breakpoint_setx -f /a.php`} {
			assert.Equal(t, []string{line}, ExpandCommand(line, fanOut))
		}
	})

	t.Run("breakpoint without file untouched", func(t *testing.T) {
		line := `breakpoint_set -i 2 -t exception -x RuntimeException`
		assert.Equal(t, []string{line}, ExpandCommand(line, fanOut))
	})

	t.Run("unparsable breakpoint untouched", func(t *testing.T) {
		line := `breakpoint_set -i 2 -f "/a.php`
		assert.Equal(t, []string{line}, ExpandCommand(line, fanOut))
	})
}
