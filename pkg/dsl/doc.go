/*
Package dsl provides a Go DSL for authoring behavior tree descriptions in code.

It produces the same blueprint records a generator would emit, so trees
written by hand go through the exact validation path as generated ones. This
is useful for tests, fixtures and agents whose tree is fixed at compile time.

Example usage:

	tree := dsl.Root(
		dsl.Selector(
			dsl.Sequence(dsl.Sense("CanSeeEnemy"), dsl.Action("Chase")),
			dsl.Action("Patrol"),
		),
	)

	res, err := dsl.New("guard the gate").
		Tree(tree).
		Build(builder.NewCatalog([]string{"Chase", "Patrol"}, []string{"CanSeeEnemy"}))
	if err != nil {
		return err
	}
	// res.Tree is ready for a runner.Driver.
*/
package dsl
