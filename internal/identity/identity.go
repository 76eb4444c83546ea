// Package identity derives file-system-safe names for built userscripts.
package identity

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	unsafeChars = regexp.MustCompile(`[/\\?%*:|"<>!]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Sanitize strips characters that are unsafe in file names, including control
// characters, and collapses whitespace runs to one space.
func Sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, name)
	name = unsafeChars.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(name, " ")
	return strings.Trim(name, " .")
}

// FileStem returns the base file name used for every artifact of a script.
func FileStem(name string) string {
	return whitespace.ReplaceAllString(Sanitize(name), "-")
}

// UserFile is the installable script: banner plus patched bundle.
func UserFile(stem string) string { return stem + ".user.js" }

// ProxyFile is the dev-mode script that requires the chunk from disk.
func ProxyFile(stem string) string { return stem + ".proxy.user.js" }

// ReloadClient is the generated dev reload client.
func ReloadClient(stem string) string { return "hot-reload-" + stem + ".js" }
