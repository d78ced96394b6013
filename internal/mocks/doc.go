// Package mocks provides hand-rolled test doubles for the persistence
// interfaces in internal/store. They are deterministic, safe for
// concurrent use, and support targeted error injection.
package mocks
