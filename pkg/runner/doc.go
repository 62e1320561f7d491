/*
Package runner implements the tick driver for behavior trees.

A Driver binds one tree to the capabilities of an agent and executes the root
once per Tick. It keeps the status of the last tick, counts ticks, and
publishes a snapshot of the tree after each tick to an optional
ports.SnapshotStore and Reporter. It never branches on the resulting status.

# Usage

	d := runner.New(
		runner.WithAgentID("guard-1"),
		runner.WithLogger(logger),
		runner.WithSnapshotStore(memory.NewStore()),
	)
	if err := d.Activate(ctx, tree, registry.Static{ActionList: actions, SenseList: senses}); err != nil {
		return err
	}

	// Drive externally, e.g. once per frame...
	status, err := d.Tick(ctx)

	// ...or at a fixed cadence until ctx is cancelled.
	err = d.Run(ctx, 100*time.Millisecond)
*/
package runner
