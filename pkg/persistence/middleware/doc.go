// Package middleware wraps snapshot stores with extra behavior: sealing
// snapshots with AES-GCM and skipping writes that change nothing.
package middleware
