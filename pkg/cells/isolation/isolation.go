// Package isolation holds the value type that selects which Linux
// namespaces a cell's nested daemon runs in. It never exposes the raw
// kernel CLONE_* bitmap upward; that translation happens only at the
// clone call site in nestedauraed.
package isolation

// Controls selects which namespaces the nested daemon receives.
type Controls struct {
	IsolateProcess bool
	IsolateNetwork bool
}
