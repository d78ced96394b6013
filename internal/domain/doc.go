// Package domain defines the core business entities and errors for
// spaced-repetition scheduling: cards, their lifecycle states, and
// the difficulty ratings submitted at review time.
package domain
