// Package cli holds the logic behind the arbor commands, kept out of
// package main so it can be tested.
package cli
