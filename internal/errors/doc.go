// Package errors provides structured, actionable errors for lattice.
//
// Every error carries a registered code (e.g. "E040") that maps to a
// category, a short message, a longer explanation and a documentation URL.
// Errors raised while walking a node tree can also carry the tree path where
// the problem was found and the expected and found values.
//
// # Error Categories
//
//   - runtime: programming-error invariant violations (raised as panics)
//   - hydration: existing markup does not match the node description
//   - surface: the rendering surface rejected an operation
//   - document: mount and head management failures
//   - render: markup serialization failures
//   - config: lattice.json problems
//   - cli: command line usage problems
//
// # Usage
//
//	err := errors.New("E041").
//	    AtPath("div/p[1]").
//	    WithMismatch("p", "span")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E041: Hydration mismatch: tag differs
//	//
//	//   at div/p[1]
//	//   expected: p
//	//   found:    span
//	//
//	//   Learn more: https://lattice.dev/docs/errors/E041
package errors
