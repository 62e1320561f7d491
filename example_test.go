package arbor_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/aretw0/arbor/pkg/builder"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
)

// ExampleCompile shows a guard that chases while it can see an enemy and
// patrols otherwise.
func ExampleCompile() {
	description := []byte(`{
		"tree": {"type": "Root", "child": {"type": "PrioritySelector", "children": [
			{"type": "StatefulSequence", "children": [
				{"type": "Sense", "name": "CanSeeEnemy"},
				{"type": "Action", "name": "Chase"}
			]},
			{"type": "Action", "name": "Patrol"}
		]}}
	}`)

	catalog := builder.NewCatalog([]string{"Chase", "Patrol"}, []string{"CanSeeEnemy"})
	res, err := arbor.Compile(description, blueprint.FormatJSON, catalog)
	if err != nil {
		log.Fatal(err)
	}

	visible := true
	source := registry.Static{
		ActionList: []domain.Action{
			domain.NewAction("Chase", func() domain.Status { return domain.Running }),
			domain.NewAction("Patrol", func() domain.Status { return domain.Success }),
		},
		SenseList: []domain.Sense{
			domain.NewSense("CanSeeEnemy", func() bool { return visible }),
		},
	}

	ctx := context.Background()
	driver, err := arbor.Activate(ctx, res.Tree, source)
	if err != nil {
		log.Fatal(err)
	}

	status, _ := driver.Tick(ctx)
	fmt.Println(status)
	// Output:
	// RUNNING
}
