// Package textutil provides text helpers for filenames and CLI formatting.
//
// The primary use cases are:
//   - Sanitizing book titles into safe PDF/file names
//   - Normalizing metadata descriptions for display
//   - Shortening labels for progress output
package textutil
