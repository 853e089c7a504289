// Package demo contains the counter application used by the lattice CLI
// and server. It exercises the virtual path on dry trees, materialization
// and deferred text updates on live trees, and hydration of server markup.
package demo
