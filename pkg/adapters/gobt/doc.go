// Package gobt bridges arbor with github.com/joeycumines/go-behaviortree.
//
// Two directions are supported: an arbor driver can run as a leaf inside a
// go-behaviortree tree, and a go-behaviortree node can be registered as an
// arbor Action or Sense.
package gobt
