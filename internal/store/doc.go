// Package store defines the persistence interfaces consumed by the
// scheduling core, together with the sentinel errors implementations must
// return. Concrete backends live under internal/platform.
package store
