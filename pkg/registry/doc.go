// Package registry binds capability providers to names.
//
// A Registry is built once when a tree is activated (see Bind) and then
// consulted by Action and Sense leaves on every tick through the
// node.Resolver interface.
package registry
