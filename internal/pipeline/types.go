package pipeline

import (
	"context"

	"github.com/opmodel/usbuild/internal/grant"
	"github.com/opmodel/usbuild/internal/header"
)

// StylePlaceholder is appended to the entry module and replaced with the
// style injection snippet once the chunk is written.
const StylePlaceholder = "__STYLE__"

// StyleModuleMarker is appended to every stylesheet module. Reading an
// unbound global is not provably pure, so the bundler keeps stylesheets that
// are imported only for effect, and they show up among the chunk's modules.
// Written chunks carry "void 0" in its place.
const StyleModuleMarker = "__STYLE_MODULE__"

// Build is the host bundler's resolved configuration.
type Build struct {
	// Root is the project root directory.
	Root string

	// OutDir is the output directory, absolute or relative to Root.
	OutDir string

	// Watch is true for dev builds.
	Watch bool
}

// Chunk is one output file reported by the bundler.
type Chunk struct {
	// FileName is the output file name relative to the output directory.
	FileName string

	// Modules lists the input modules that landed in the chunk, in bundler
	// order.
	Modules []string
}

// Transformer post-processes chunk source before it is written.
type Transformer interface {
	Transform(ctx context.Context, source, name string) (string, error)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(ctx context.Context, source, name string) (string, error)

// Transform calls f.
func (f TransformerFunc) Transform(ctx context.Context, source, name string) (string, error) {
	return f(ctx, source, name)
}

// Opener opens a URL in the user's browser.
type Opener func(url string) error

// Options configures a Session.
type Options struct {
	// Header is the user-declared metadata. The session works on a copy.
	Header header.Metadata

	// Entry is the entry module path, relative to the build root.
	Entry string

	// AutoGrant enables grant inference in production builds.
	AutoGrant bool

	// Port is the dev server port; 0 picks a free port.
	Port int

	// Open opens the proxy script in a browser the first time the dev
	// server starts.
	Open bool

	// Transformer post-processes chunks and the reload client. Nil leaves
	// the source untouched.
	Transformer Transformer

	// Opener is used when Open is set. Nil disables opening.
	Opener Opener

	// Registry overrides the grant registry used for inference.
	Registry *grant.Registry
}
