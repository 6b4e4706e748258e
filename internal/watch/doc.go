// Package watch observes a single file and invokes a callback each time it
// is modified. snaptail uses it to push edits of the user's component into
// the generated project while the dev server is running.
package watch
