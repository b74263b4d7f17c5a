// Package errors provides structured, coded error messages for sprout.
//
// Every error carries a short code (e.g. "E100") that maps to a registered
// template with a category, a one-line message, a longer explanation and a
// documentation link. Callers enrich a template with detail, a suggestion or
// a wrapped cause:
//
//	err := errors.New("E121").
//	    WithDetail("devtools.addr is empty").
//	    WithSuggestion("Set devtools.addr to host:port, for example 127.0.0.1:7070")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E121: Invalid configuration value
//	//
//	//   devtools.addr is empty
//	//
//	//   Hint: Set devtools.addr to host:port, for example 127.0.0.1:7070
//
// # Error Categories
//
//   - runtime: reactivity and reconciler misuse (readonly writes, render panics)
//   - config: sprout.json / sprout.toml problems
//   - scenario: replay scenario and trace archive problems
//   - cli: command line usage problems
//
// Runtime misuse codes are used as structured log attributes rather than
// returned values: a write to a readonly proxy is logged and ignored.
package errors
