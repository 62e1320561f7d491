/*
Package node implements the behavior tree execution model.

A tree is built from six node variants:

  - Root: reports its single child's status unmodified (fails without a child).
  - Inverter: flips Success and Failure of its single child; Running passes through.
  - PrioritySelector: reactive, stateless; re-evaluates children from the first
    one every tick and stops at the first non-Failure status.
  - StatefulSequence: resumable; remembers the child that returned Running and
    continues from it on the next tick; a Failure resets it.
  - Action / Sense: leaves that delegate to capabilities resolved by name.

Trees are immutable in shape once constructed: parents receive their children
at construction time. Every call to Execute is synchronous and records the
node's last observed status, which starts as Success.

	tree := node.New(
		node.NewRoot(node.NewStatefulSequence([]node.Node{
			node.NewSense("CanSeeEnemy"),
			node.NewAction("Chase"),
		})),
		"chase visible enemies",
	)
	status := tree.Root.Execute(&node.Context{Resolver: reg})
*/
package node
