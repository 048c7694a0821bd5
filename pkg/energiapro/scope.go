package energiapro

// Scope selects which upstream representation of a measurement is
// requested. Unknown values are passed through verbatim so future API
// scopes keep working.
type Scope string

const (
	// ScopeLpnJSON is the standard LPN JSON payload. Default.
	ScopeLpnJSON Scope = "lpn-json"
	// ScopeGcPlusJSON is the extended GC+ JSON payload.
	ScopeGcPlusJSON Scope = "gc-plus-json"

	// scopeInstallationList is the internal scope used to list the
	// installations of a client.
	scopeInstallationList Scope = "installation-lpn-list"
)

func (s Scope) String() string { return string(s) }

// orDefault substitutes the default scope for an empty one.
func (s Scope) orDefault() Scope {
	if s == "" {
		return ScopeLpnJSON
	}
	return s
}
