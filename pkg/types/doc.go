// Package types defines the core types shared across applinker packages.
//
// It holds the package entry model produced by scanning, the filesystem
// interface the reconciler mutates through, and the event types the watch
// coordinator funnels into the reconciliation worker.
package types
