// Package banner renders the userscript metadata block.
package banner

import (
	"strings"

	"github.com/opmodel/usbuild/internal/header"
)

const (
	// Open is the first line of every metadata block.
	Open = "// ==UserScript=="

	// Close is the last line of every metadata block.
	Close = "// ==/UserScript=="
)

type field struct {
	key    string
	single func(*header.Metadata) string
	list   func(*header.Metadata) []string
}

// fields is the fixed rendering order.
var fields = []field{
	{key: "name", single: func(m *header.Metadata) string { return m.Name }},
	{key: "namespace", single: func(m *header.Metadata) string { return m.Namespace }},
	{key: "version", single: func(m *header.Metadata) string { return m.Version }},
	{key: "description", single: func(m *header.Metadata) string { return m.Description }},
	{key: "author", single: func(m *header.Metadata) string { return m.Author }},
	{key: "homepage", single: func(m *header.Metadata) string { return m.Homepage }},
	{key: "icon", single: func(m *header.Metadata) string { return m.Icon }},
	{key: "updateURL", single: func(m *header.Metadata) string { return m.UpdateURL }},
	{key: "downloadURL", single: func(m *header.Metadata) string { return m.DownloadURL }},
	{key: "supportURL", single: func(m *header.Metadata) string { return m.SupportURL }},
	{key: "match", list: func(m *header.Metadata) []string { return m.Match }},
	{key: "include", list: func(m *header.Metadata) []string { return m.Include }},
	{key: "exclude-match", list: func(m *header.Metadata) []string { return m.ExcludeMatch }},
	{key: "exclude", list: func(m *header.Metadata) []string { return m.Exclude }},
	{key: "require", list: func(m *header.Metadata) []string { return m.Require }},
	{key: "resource", list: func(m *header.Metadata) []string { return m.Resource }},
	{key: "connect", list: func(m *header.Metadata) []string { return m.Connect }},
	{key: "grant", list: func(m *header.Metadata) []string { return m.Grant }},
	{key: "antifeature", list: func(m *header.Metadata) []string { return m.Antifeature }},
	{key: "run-at", single: func(m *header.Metadata) string { return m.RunAt }},
}

// Render returns the metadata block for md. List fields are expected to be
// normalized already; values are written verbatim.
func Render(md *header.Metadata) string {
	var b strings.Builder

	b.WriteString(Open)
	b.WriteString("\n")

	for _, f := range fields {
		if f.single != nil {
			if v := f.single(md); v != "" {
				writeLine(&b, f.key, v)
			}
			continue
		}
		for _, v := range f.list(md) {
			writeLine(&b, f.key, v)
		}
	}
	if md.NoFrames {
		b.WriteString("// @noframes\n")
	}

	b.WriteString(Close)
	return b.String()
}

// Prepend returns the metadata block followed by a blank line and source.
func Prepend(md *header.Metadata, source string) string {
	return Render(md) + "\n\n" + source
}

func writeLine(b *strings.Builder, key, value string) {
	b.WriteString("// @")
	b.WriteString(key)
	b.WriteString(" ")
	b.WriteString(value)
	b.WriteString("\n")
}
