package grant

import "github.com/opmodel/usbuild/internal/listutil"

// Policy decides the final grant list for one built chunk.
type Policy struct {
	// Watch forces the full permission superset so the reload client always
	// has what it needs.
	Watch bool

	// Auto enables inference in production builds. When false the declared
	// grants plus Baseline are used.
	Auto bool

	// Declared is the grant list from the user's configuration.
	Declared []string

	// Registry overrides the default registry; nil uses Default().
	Registry *Registry
}

// Resolve returns the grants for source according to the policy.
func (p Policy) Resolve(source string) []string {
	reg := p.Registry
	if reg == nil {
		reg = defaultRegistry
	}

	switch {
	case p.Watch:
		return reg.Permissions()
	case p.Auto:
		return listutil.Unique(listutil.Concat(reg.Infer(source), p.Declared))
	default:
		return listutil.Unique(listutil.Concat(p.Declared, Baseline))
	}
}

// Mode names the policy branch, for logging.
func (p Policy) Mode() string {
	switch {
	case p.Watch:
		return "watch"
	case p.Auto:
		return "inferred"
	default:
		return "declared"
	}
}
