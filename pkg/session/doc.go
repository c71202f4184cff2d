// Package session runs many concurrent conversations over one dialogue engine,
// persisting each conversation's position through a ports.StateStore.
package session
