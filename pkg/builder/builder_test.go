package builder

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var guardCatalog = NewCatalog([]string{"Patrol", "Chase"}, []string{"CanSeeEnemy"})

func decode(t *testing.T, src string) *blueprint.Document {
	t.Helper()
	doc, err := blueprint.Decode([]byte(src), blueprint.FormatJSON)
	require.NoError(t, err)
	return doc
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("n%d", n)
	})
}

func TestBuild_GuardTree(t *testing.T) {
	doc := decode(t, `{
		"description": "guard",
		"tree": {"type": "Root", "child": {
			"type": "PrioritySelector", "children": [
				{"type": "StatefulSequence", "children": [
					{"type": "Sense", "name": "CanSeeEnemy"},
					{"type": "Action", "name": "Chase"}
				]},
				{"type": "Action", "name": "Patrol"}
			]}}}`)

	res, err := New(guardCatalog).Build(doc)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.True(t, res.Usable())
	assert.Equal(t, "guard", res.Tree.Description)

	var kinds []domain.Kind
	for _, n := range res.Tree.Nodes() {
		kinds = append(kinds, n.Kind())
		assert.Equal(t, domain.Success, n.Status())
	}
	assert.Equal(t, []domain.Kind{
		domain.KindRoot, domain.KindPrioritySelector, domain.KindStatefulSequence,
		domain.KindSense, domain.KindAction, domain.KindAction,
	}, kinds)
}

func TestBuild_UnavailableCapability(t *testing.T) {
	src := `{"type": "Root", "child": {"type": "Action", "name": "Jump"}}`
	catalog := NewCatalog([]string{"Patrol", "Chase"}, nil)

	t.Run("lenient builds a childless root", func(t *testing.T) {
		res, err := New(catalog).Build(decode(t, src))
		require.NoError(t, err)
		require.Len(t, res.Issues, 1)
		assert.False(t, res.Usable())

		issue := res.Issues[0]
		assert.ErrorIs(t, issue, domain.ErrCapabilityUnavailable)
		assert.Equal(t, "Action", issue.Kind)
		assert.Equal(t, "Jump", issue.Name)
		assert.Equal(t, "$.child", issue.Path)
		assert.Contains(t, issue.Error(), `Action("Jump")`)

		root, ok := res.Tree.Root.(*node.Root)
		require.True(t, ok)
		assert.Nil(t, root.Child())
		assert.Equal(t, domain.Failure, root.Execute(nil))
	})

	t.Run("strict rejects the tree", func(t *testing.T) {
		res, err := New(catalog, WithPolicy(Strict)).Build(decode(t, src))
		assert.Nil(t, res)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)

		var aggr *AggregateError
		require.ErrorAs(t, err, &aggr)
		require.Len(t, aggr.Errors, 1)
		assert.Equal(t, "Jump", aggr.Errors[0].Name)
		assert.Len(t, BuildErrors(err), 1)
	})
}

func TestBuild_LenientOmitsFailedCompositeChildren(t *testing.T) {
	doc := decode(t, `{"type": "PrioritySelector", "children": [
		{"type": "Action", "name": "Jump"},
		{"type": "Parallel", "children": [{"type": "Action", "name": "Chase"}]},
		{"type": "Action", "name": "Patrol"}
	]}`)

	res, err := New(guardCatalog).Build(doc)
	require.NoError(t, err)
	require.Len(t, res.Issues, 2)
	assert.ErrorIs(t, res.Issues[0], domain.ErrCapabilityUnavailable)
	assert.ErrorIs(t, res.Issues[1], domain.ErrUnknownKind)
	assert.Contains(t, res.Issues[1].Error(), "Parallel")
	assert.Equal(t, "$.children[1]", res.Issues[1].Path)

	children := res.Tree.Root.Children()
	require.Len(t, children, 1)
	assert.Equal(t, "Patrol", node.Name(children[0]))
}

func TestBuild_DecoratorChildForms(t *testing.T) {
	for _, tt := range []struct {
		name   string
		src    string
		child  string
		issues int
	}{
		{
			name:  "canonical child",
			src:   `{"type": "Inverter", "child": {"type": "Action", "name": "Chase"}}`,
			child: "Chase",
		},
		{
			name:  "legacy children",
			src:   `{"type": "Inverter", "children": [{"type": "Action", "name": "Chase"}]}`,
			child: "Chase",
		},
		{
			name:   "legacy children with extras",
			src:    `{"type": "Inverter", "children": [{"type": "Action", "name": "Chase"}, {"type": "Action", "name": "Patrol"}]}`,
			child:  "Chase",
			issues: 1,
		},
		{
			name:   "child wins over children",
			src:    `{"type": "Inverter", "child": {"type": "Action", "name": "Patrol"}, "children": [{"type": "Action", "name": "Chase"}]}`,
			child:  "Patrol",
			issues: 1,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(guardCatalog).Build(decode(t, tt.src))
			require.NoError(t, err)
			assert.Len(t, res.Issues, tt.issues)

			inv, ok := res.Tree.Root.(*node.Inverter)
			require.True(t, ok)
			require.NotNil(t, inv.Child())
			assert.Equal(t, tt.child, node.Name(inv.Child()))
		})
	}
}

func TestBuild_MissingDecoratorChild(t *testing.T) {
	res, err := New(guardCatalog).Build(decode(t, `{"type": "Root"}`))
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.ErrorIs(t, res.Issues[0], domain.ErrMalformedNode)
	assert.False(t, res.Usable())

	_, err = New(guardCatalog, WithPolicy(Strict)).Build(decode(t, `{"type": "Root"}`))
	assert.ErrorIs(t, err, domain.ErrMalformedNode)
}

func TestBuild_MalformedRecordIsolated(t *testing.T) {
	doc := decode(t, `{"type": "StatefulSequence", "children": [
		{"type": "Sense", "name": "CanSeeEnemy"},
		{"type": "Action", "name": 42},
		{"type": "Action"},
		{"type": "Action", "name": "Chase"}
	]}`)

	res, err := New(guardCatalog).Build(doc)
	require.NoError(t, err)
	require.Len(t, res.Issues, 2)
	for _, issue := range res.Issues {
		assert.ErrorIs(t, issue, domain.ErrMalformedNode)
	}

	children := res.Tree.Root.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "CanSeeEnemy", node.Name(children[0]))
	assert.Equal(t, "Chase", node.Name(children[1]))
}

func TestBuild_LeafWithChildren(t *testing.T) {
	doc := decode(t, `{"type": "Action", "name": "Chase", "children": [{"type": "Action", "name": "Patrol"}]}`)

	res, err := New(guardCatalog).Build(doc)
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "Chase", node.Name(res.Tree.Root))
	assert.Empty(t, res.Tree.Root.Children())
}

func TestBuild_TopLevelFailure(t *testing.T) {
	for _, src := range []string{
		`{"type": "Action", "name": "Jump"}`,
		`{"type": "Decorator", "child": {"type": "Action", "name": "Chase"}}`,
	} {
		res, err := New(guardCatalog).Build(decode(t, src))
		assert.Nil(t, res)
		var aggr *AggregateError
		require.ErrorAs(t, err, &aggr, src)
		assert.Len(t, aggr.Errors, 2, src)
	}

	_, err := New(guardCatalog).Build(nil)
	assert.ErrorIs(t, err, domain.ErrMalformedNode)
	_, err = New(guardCatalog).Build(&blueprint.Document{Description: "empty"})
	assert.ErrorIs(t, err, domain.ErrMalformedNode)
}

func TestBuild_IDs(t *testing.T) {
	doc := decode(t, `{"type": "Root", "id": "top", "child": {
		"type": "PrioritySelector", "children": [
			{"type": "Action", "name": "Chase", "id": "leaf"},
			{"type": "Action", "name": "Patrol", "id": "leaf"}
		]}}`)

	res, err := New(guardCatalog, sequentialIDs()).Build(doc)
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.ErrorIs(t, res.Issues[0], domain.ErrMalformedNode)
	assert.Equal(t, "$.child.children[1]", res.Issues[0].Path)

	var ids []string
	for _, n := range res.Tree.Nodes() {
		ids = append(ids, n.ID())
	}
	assert.Equal(t, []string{"top", "n2", "leaf", "n1"}, ids)

	_, err = New(guardCatalog, WithPolicy(Strict)).Build(doc)
	assert.Error(t, err)
}

func TestBuild_ConstructsFreshTrees(t *testing.T) {
	doc := decode(t, `{"type": "StatefulSequence", "children": [{"type": "Action", "name": "Chase", "id": "c"}]}`)
	b := New(guardCatalog)

	first, err := b.Build(doc)
	require.NoError(t, err)
	second, err := b.Build(doc)
	require.NoError(t, err)

	assert.NotSame(t, first.Tree.Root, second.Tree.Root)
	c1, _ := first.Tree.Find("c")
	c2, _ := second.Tree.Find("c")
	assert.NotSame(t, c1, c2)
}

func TestCatalog(t *testing.T) {
	c := NewCatalog([]string{"Patrol", "", "Chase", "Patrol"}, []string{"CanSeeEnemy"})
	assert.Equal(t, []string{"Patrol", "Chase"}, c.Actions())
	assert.Equal(t, []string{"CanSeeEnemy"}, c.Senses())
	assert.True(t, c.Allows(domain.KindAction, "Chase"))
	assert.False(t, c.Allows(domain.KindSense, "Chase"))
	assert.False(t, c.Allows(domain.KindRoot, "Chase"))

	var empty *Catalog
	assert.False(t, empty.HasAction("Chase"))
	assert.Nil(t, empty.Actions())
}

func TestCatalogFromRegistry(t *testing.T) {
	reg, errs := registry.Bind(registry.Static{
		ActionList: []domain.Action{domain.NewAction("Patrol", func() domain.Status { return domain.Running })},
		SenseList:  []domain.Sense{domain.NewSense("CanSeeEnemy", func() bool { return false })},
	}, nil)
	require.Empty(t, errs)

	c := CatalogFromRegistry(reg)
	assert.True(t, c.HasAction("Patrol"))
	assert.True(t, c.HasSense("CanSeeEnemy"))
	assert.False(t, c.HasAction("Chase"))
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": Lenient, "lenient": Lenient, "strict": Strict} {
		got, err := ParsePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePolicy("paranoid")
	assert.Error(t, err)
	assert.Equal(t, "strict", Strict.String())
}

func TestAggregateError_Message(t *testing.T) {
	err := &AggregateError{Errors: []*BuildError{
		{Path: "$", Kind: "Action", Name: "Jump", Err: domain.ErrCapabilityUnavailable},
		{Path: "$.child", Kind: "Parallel", Err: domain.ErrUnknownKind},
	}}
	assert.Contains(t, err.Error(), "2 build errors")
	assert.True(t, errors.Is(err, domain.ErrUnknownKind))
}
