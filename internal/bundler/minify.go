package bundler

import (
	"context"
	"strconv"

	"github.com/evanw/esbuild/pkg/api"

	oerrors "github.com/opmodel/usbuild/internal/errors"
)

// Minifier is the post-processing step applied to every assembled chunk and
// to the reload client. Without minification it still reprints the source
// through esbuild, normalizing the output.
type Minifier struct {
	minify bool
	target api.Target
}

// NewMinifier returns a Minifier. minify enables whitespace, identifier and
// syntax minification.
func NewMinifier(minify bool) *Minifier {
	return &Minifier{minify: minify, target: api.ES2020}
}

// Transform runs source through esbuild's transform API.
func (m *Minifier) Transform(ctx context.Context, source, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	result := api.Transform(source, api.TransformOptions{
		Loader:            api.LoaderJS,
		Sourcefile:        name,
		Target:            m.target,
		Charset:           api.CharsetUTF8,
		LegalComments:     api.LegalCommentsInline,
		MinifyWhitespace:  m.minify,
		MinifyIdentifiers: m.minify,
		MinifySyntax:      m.minify,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", messagesError("transform of "+name+" failed", result.Errors)
	}
	return string(result.Code), nil
}

// messagesError turns esbuild messages into a build error, one context
// entry per message keyed by its location.
func messagesError(message string, msgs []api.Message) error {
	ctx := make(map[string]string, len(msgs))
	for i, msg := range msgs {
		key := "#" + strconv.Itoa(i+1)
		if loc := msg.Location; loc != nil {
			key = loc.File + ":" + strconv.Itoa(loc.Line) + ":" + strconv.Itoa(loc.Column)
		}
		ctx[key] = msg.Text
	}
	return oerrors.NewBuildError(message, ctx)
}
