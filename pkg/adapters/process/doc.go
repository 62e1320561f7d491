// Package process backs capabilities with local commands.
//
// Only commands declared in a capability file are run. An action maps the
// exit code onto a status: zero is SUCCESS unless the last line of stdout
// names another status, anything else is FAILURE. A sense is true when its
// command exits with zero.
package process
