// Package grant infers the userscript permissions (@grant values) a built
// script needs from the manager APIs it references.
package grant

import (
	"regexp"
	"strings"

	"github.com/opmodel/usbuild/internal/listutil"
)

// Entry maps an API identifier to the permission token it requires.
type Entry struct {
	// Identifier is the symbol as it appears in source, e.g. "GM_setValue"
	// or "GM_cookie.list".
	Identifier string

	// Permission is the @grant value the identifier requires.
	Permission string

	pattern *regexp.Regexp
}

// Registry is an ordered, immutable identifier → permission table.
type Registry struct {
	entries []Entry
}

// Baseline is the permission set required by the injected style and logging
// helpers. It is appended to declared grants when inference is disabled.
var Baseline = []string{"GM_addStyle", "GM_info"}

// defaultEntries lists the manager APIs recognized by inference. Several
// identifiers may share one permission.
var defaultEntries = [][2]string{
	{"GM_addElement", "GM_addElement"},
	{"GM_addStyle", "GM_addStyle"},
	{"GM_download", "GM_download"},
	{"GM_getResourceText", "GM_getResourceText"},
	{"GM_getResourceURL", "GM_getResourceURL"},
	{"GM_info", "GM_info"},
	{"GM_log", "GM_log"},
	{"GM_notification", "GM_notification"},
	{"GM_openInTab", "GM_openInTab"},
	{"GM_registerMenuCommand", "GM_registerMenuCommand"},
	{"GM_unregisterMenuCommand", "GM_unregisterMenuCommand"},
	{"GM_setClipboard", "GM_setClipboard"},
	{"GM_getTab", "GM_getTab"},
	{"GM_getTabs", "GM_getTabs"},
	{"GM_saveTab", "GM_saveTab"},
	{"GM_setValue", "GM_setValue"},
	{"GM_getValue", "GM_getValue"},
	{"GM_deleteValue", "GM_deleteValue"},
	{"GM_listValues", "GM_listValues"},
	{"GM_addValueChangeListener", "GM_addValueChangeListener"},
	{"GM_removeValueChangeListener", "GM_removeValueChangeListener"},
	{"GM_xmlhttpRequest", "GM_xmlhttpRequest"},
	{"GM_webRequest", "GM_webRequest"},
	{"GM_cookie", "GM_cookie"},
	{"GM_cookie.list", "GM_cookie"},
	{"GM_cookie.set", "GM_cookie"},
	{"GM_cookie.delete", "GM_cookie"},
	{"GM.addElement", "GM.addElement"},
	{"GM.addStyle", "GM.addStyle"},
	{"GM.getResourceUrl", "GM.getResourceUrl"},
	{"GM.getValue", "GM.getValue"},
	{"GM.setValue", "GM.setValue"},
	{"GM.deleteValue", "GM.deleteValue"},
	{"GM.listValues", "GM.listValues"},
	{"GM.notification", "GM.notification"},
	{"GM.openInTab", "GM.openInTab"},
	{"GM.registerMenuCommand", "GM.registerMenuCommand"},
	{"GM.setClipboard", "GM.setClipboard"},
	{"GM.xmlHttpRequest", "GM.xmlHttpRequest"},
	{"unsafeWindow", "unsafeWindow"},
	{"window.close", "window.close"},
	{"window.focus", "window.focus"},
	{"window.onurlchange", "window.onurlchange"},
}

var defaultRegistry = mustRegistry(defaultEntries)

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry builds a registry from (identifier, permission) pairs. Order is
// preserved and determines the order of inferred permissions.
func NewRegistry(pairs [][2]string) (*Registry, error) {
	entries := make([]Entry, 0, len(pairs))
	for _, p := range pairs {
		re, err := tokenPattern(p[0])
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Identifier: p[0], Permission: p[1], pattern: re})
	}
	return &Registry{entries: entries}, nil
}

func mustRegistry(pairs [][2]string) *Registry {
	r, err := NewRegistry(pairs)
	if err != nil {
		panic(err)
	}
	return r
}

// tokenPattern matches identifier as a whole token: not preceded or followed
// by an identifier character. Dotted identifiers such as window.close must
// also not follow a dot, while plain ones like GM_setValue may, so
// window.GM_setValue counts.
func tokenPattern(identifier string) (*regexp.Regexp, error) {
	before := `(?:^|[^\w$])`
	if strings.Contains(identifier, ".") {
		before = `(?:^|[^\w$.])`
	}
	return regexp.Compile(before + regexp.QuoteMeta(identifier) + `(?:$|[^\w$])`)
}

// Entries returns a copy of the registry entries.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Permissions returns every permission in the registry, deduplicated.
func (r *Registry) Permissions() []string {
	perms := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		perms = append(perms, e.Permission)
	}
	return listutil.Unique(perms)
}

// Infer returns the permissions required by the identifiers referenced in
// source, in registry order, without duplicates.
func (r *Registry) Infer(source string) []string {
	var found []string
	for _, e := range r.entries {
		if e.pattern.MatchString(source) {
			found = append(found, e.Permission)
		}
	}
	return listutil.Unique(found)
}

// Infer runs inference with the default registry.
func Infer(source string) []string {
	return defaultRegistry.Infer(source)
}

// All returns the broad permission superset used in watch mode.
func All() []string {
	return defaultRegistry.Permissions()
}
