// Package css collects stylesheets imported by the bundle and turns them into
// a single snippet injected into the built userscript.
package css

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"
)

// stylePattern matches module paths handled as stylesheets.
var stylePattern = regexp.MustCompile(`\.css(\?.*)?$`)

// IsStyle reports whether the module path is a stylesheet.
func IsStyle(path string) bool {
	return stylePattern.MatchString(path)
}

// Aggregator records CSS captured while loading modules and merges the
// stylesheets of one output chunk. It is owned by a single build session.
type Aggregator struct {
	modules map[string]string
	merged  string
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{modules: make(map[string]string)}
}

// Add records text as the CSS of the module at path and returns the JavaScript
// module the bundler should load in its place.
func (a *Aggregator) Add(text, path string) string {
	a.modules[key(path)] = text
	return "export default " + quote(text) + ";\n"
}

// Merge concatenates the recorded CSS of moduleIDs, in the given order, and
// keeps it as the stylesheet of this build. Unknown ids are skipped. A later
// call replaces the earlier result.
func (a *Aggregator) Merge(moduleIDs []string) string {
	parts := make([]string, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		if text, ok := a.modules[key(id)]; ok {
			parts = append(parts, text)
		}
	}
	a.merged = strings.Join(parts, "\n")
	return a.merged
}

// Merged returns the current merged stylesheet.
func (a *Aggregator) Merged() string {
	return a.merged
}

// Inject returns a statement that installs the merged stylesheet at script
// run time, or "" when there is nothing to install.
func (a *Aggregator) Inject() string {
	if strings.TrimSpace(a.merged) == "" {
		return ""
	}
	return "GM_addStyle(" + quote(a.merged) + ")"
}

func key(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return filepath.Clean(path)
}

// quote renders s as a JavaScript string literal.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
