package templates

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/opmodel/usbuild/internal/identity"
)

// matchPatternRegex accepts <scheme>://<host><path> match patterns.
var matchPatternRegex = regexp.MustCompile(`^(\*|https?|file|ftp)://(\*|\*\.[^/*]+|[^/*]+)?/.*$`)

// ValidateScriptName checks that a name survives file name sanitization.
func ValidateScriptName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("script name cannot be empty")
	}
	if identity.Sanitize(name) == "" {
		return fmt.Errorf("invalid script name %q: nothing left after removing unsafe characters", name)
	}
	return nil
}

// ValidateMatchPattern checks a @match pattern.
func ValidateMatchPattern(pattern string) error {
	if pattern == "<all_urls>" || matchPatternRegex.MatchString(pattern) {
		return nil
	}
	return fmt.Errorf("invalid match pattern %q: expected <scheme>://<host>/<path>", pattern)
}

// DeriveScriptName turns a directory name into a script name:
// "my-cool_script" becomes "My Cool Script".
func DeriveScriptName(dirname string) string {
	words := strings.FieldsFunc(dirname, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	if len(words) == 0 {
		return "My Script"
	}
	return strings.Join(words, " ")
}
