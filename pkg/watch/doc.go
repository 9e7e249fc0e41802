// Package watch keeps generated output in sync with manifest edits.
//
// A FileWatcher observes the configured manifest paths through fsnotify
// and, after a debounced quiet period, invokes the regeneration
// callback. Validation failures in a freshly edited manifest are logged
// and the previous output is left in place.
package watch
