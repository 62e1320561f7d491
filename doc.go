/*
Package arbor is a behavior tree interpreter for game and simulation agents.

An agent's behavior is a tree of nodes. Leaves call into externally provided
capabilities (Actions and Senses); interior nodes combine child results with
fixed rules (priority selection, stateful sequencing, inversion). Each tick
evaluates the tree once from the root and yields a Status: SUCCESS, FAILURE
or RUNNING.

# Concept

Trees are not written by hand in Go code. They arrive as structural
descriptions, usually produced by a generator, and are validated against the
catalog of capabilities the agent actually has before they are ever run.

	description (JSON/YAML) -> builder -> tree -> driver.Tick() -> Status

The interpreter never schedules ticks by itself and never acts on the status
it computes. The host decides when to tick and what to do with the result.

# Usage

	source := registry.Static{
		ActionList: []domain.Action{domain.NewAction("Chase", chase)},
		SenseList:  []domain.Sense{domain.NewSense("CanSeeEnemy", canSee)},
	}

	driver, res, err := arbor.Start(ctx, "guard.yaml", source)
	if err != nil {
		log.Fatal(err)
	}
	for _, issue := range res.Issues {
		log.Println("ignored:", issue)
	}

	status, err := driver.Tick(ctx)

# Packages

  - pkg/domain: statuses, node kinds, capability contracts, hooks.
  - pkg/node: the six node variants and their tick semantics.
  - pkg/blueprint, pkg/builder: decoding and validating descriptions.
  - pkg/runner: the tick driver.
  - pkg/adapters: snapshot stores, HTTP and MCP surfaces, scripted and
    command-backed capabilities, go-behaviortree interop.
*/
package arbor
