package mapping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// DefaultContexts are the runtime contexts a layered class cache may be built for.
var DefaultContexts = []string{"Development", "Testing", "Production"}

const (
	packagesMarker = "/Packages/"
	classesDir     = "Classes/"
	cacheTemplate  = "%s/Data/Temporary/%s/Cache/Code/FLOW3_Object_Classes/%s_Original.php"
)

// packageClassPattern splits a package source path into the installation
// root and the package-relative class path.
var packageClassPattern = regexp.MustCompile(`^(.*?)/Packages/(.*?)/(.*)\.php`)

// Entry is a single mapping between the IDE's view of a path and the engine's.
type Entry struct {
	Logical  string `json:"logical" yaml:"logical"`
	Physical string `json:"physical" yaml:"physical"`
	// Derived marks entries synthesized by Expand rather than loaded.
	Derived bool `json:"derived,omitempty" yaml:"-"`
}

// Mapper holds the ordered mapping table and the path transforms built on it.
// It is not safe for concurrent use; the relay touches it from a single loop.
type Mapper struct {
	entries  []Entry
	contexts []string
}

// NewMapper creates a mapper over entries. extraContexts are appended to
// DefaultContexts, skipping blanks and duplicates.
func NewMapper(entries []Entry, extraContexts []string) *Mapper {
	m := &Mapper{
		contexts: normalizeContexts(extraContexts),
	}
	for _, e := range entries {
		m.Add(e.Logical, e.Physical)
	}
	return m
}

func normalizeContexts(extra []string) []string {
	all := append(append([]string{}, DefaultContexts...), extra...)
	all = lo.Map(all, func(c string, _ int) string { return strings.TrimSpace(c) })
	return lo.Uniq(lo.Compact(all))
}

// Add inserts a mapping, replacing an existing entry with the same physical
// path in place so table order is kept.
func (m *Mapper) Add(logical, physical string) {
	m.upsert(Entry{Logical: logical, Physical: physical})
}

func (m *Mapper) upsert(e Entry) {
	if e.Physical == "" {
		return
	}
	for i := range m.entries {
		if m.entries[i].Physical == e.Physical {
			m.entries[i] = e
			return
		}
	}
	m.entries = append(m.entries, e)
}

// Entries returns a copy of the table in order.
func (m *Mapper) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Len returns the number of entries in the table.
func (m *Mapper) Len() int {
	return len(m.entries)
}

// Contexts returns the context names used for cache expansion.
func (m *Mapper) Contexts() []string {
	return append([]string(nil), m.contexts...)
}

// Reload replaces the loaded entries with entries. Derived entries are kept
// after the new ones.
func (m *Mapper) Reload(entries []Entry) {
	derived := lo.Filter(m.entries, func(e Entry, _ int) bool { return e.Derived })
	m.entries = nil
	for _, e := range entries {
		m.Add(e.Logical, e.Physical)
	}
	for _, e := range derived {
		m.upsert(e)
	}
}

// Expand returns the paths a breakpoint on logical should be set on. The
// logical path itself always comes first. For package class sources it is
// followed by one code cache file per context, and each of those is recorded
// as mapping back to logical.
func (m *Mapper) Expand(logical string) []string {
	if !strings.Contains(logical, packagesMarker) {
		return []string{logical}
	}
	root, className, ok := classFromPath(logical)
	if !ok {
		return []string{logical}
	}

	paths := make([]string, 0, len(m.contexts)+1)
	paths = append(paths, logical)
	cacheName := strings.ReplaceAll(className, `\`, "_")
	for _, ctx := range m.contexts {
		derived := fmt.Sprintf(cacheTemplate, root, ctx, cacheName)
		paths = append(paths, derived)
		m.upsert(Entry{Logical: logical, Physical: derived, Derived: true})
	}
	return paths
}

// classFromPath derives the installation root and the namespaced class name
// from a path like /srv/app/Packages/Application/Acme.Shop/Classes/Controller/Cart.php.
func classFromPath(path string) (root, className string, ok bool) {
	m := packageClassPattern.FindStringSubmatch(path)
	if m == nil {
		return "", "", false
	}
	classPath := strings.ReplaceAll(m[3], classesDir, "")
	className = strings.NewReplacer(".", `\`, "/", `\`).Replace(classPath)
	return m[1], className, true
}

// Contract rewrites an engine path into the IDE's view by applying every
// entry in table order as a case-insensitive substring replacement of the
// physical fragment with the logical one.
func (m *Mapper) Contract(physical string) string {
	out := physical
	for _, e := range m.entries {
		out = replaceFold(out, e.Physical, e.Logical)
	}
	return out
}

// replaceFold replaces every occurrence of old in s, folding ASCII case
// only. Other bytes must match exactly.
func replaceFold(s, old, repl string) string {
	if old == "" || len(s) < len(old) {
		return s
	}
	var b strings.Builder
	last := 0
	for i := 0; i+len(old) <= len(s); {
		if !equalFoldASCII(s[i:i+len(old)], old) {
			i++
			continue
		}
		b.WriteString(s[last:i])
		b.WriteString(repl)
		i += len(old)
		last = i
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

func equalFoldASCII(a, b string) bool {
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
