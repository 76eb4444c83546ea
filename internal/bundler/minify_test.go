package bundler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/usbuild/internal/errors"
)

const sample = `(function () {
  var greeting = "hello";
  GM_addStyle("body { color: red }");
  console.log(greeting);
})();
`

func TestMinifierTransform(t *testing.T) {
	ctx := context.Background()

	t.Run("reprints without minifying", func(t *testing.T) {
		out, err := NewMinifier(false).Transform(ctx, sample, "a.js")
		require.NoError(t, err)
		assert.Contains(t, out, "greeting")
		assert.Contains(t, out, `GM_addStyle("body { color: red }");`)
	})

	t.Run("minifies", func(t *testing.T) {
		out, err := NewMinifier(true).Transform(ctx, sample, "a.js")
		require.NoError(t, err)
		assert.Less(t, len(out), len(sample))
		assert.NotContains(t, out, "greeting", "locals are renamed")
		assert.Contains(t, out, "GM_addStyle(", "globals are kept")
		assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := NewMinifier(false).Transform(ctx, "var = ;", "bad.js")
		require.Error(t, err)
		assert.True(t, errors.Is(err, oerrors.ErrBuild))
		assert.Contains(t, err.Error(), "bad.js")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewMinifier(false).Transform(cctx, sample, "a.js")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
