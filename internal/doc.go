// Package internal contains the anvil framework implementation.
//
// This package is internal to prevent direct imports. All public APIs are
// re-exported through the root anvil package via type aliases: the App
// lifecycle, the route table with exact and placeholder patterns, the
// request Context, error types, settings, and the server runtime.
//
// Users should import github.com/dmitrymomot/anvil instead.
package internal
