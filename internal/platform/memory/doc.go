// Package memory provides in-memory implementations of the store interfaces,
// used for development servers and tests. All stores created from one DB share
// the same data so term counts follow post assignments.
package memory
