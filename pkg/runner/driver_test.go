package runner_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/builder"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script replays values, repeating the last one once exhausted.
func script[T any](values ...T) (func() T, *int) {
	calls := new(int)
	return func() T {
		i := *calls
		*calls++
		if i >= len(values) {
			i = len(values) - 1
		}
		return values[i]
	}, calls
}

func chaseTree(t *testing.T) *node.BehaviorTree {
	t.Helper()
	res, err := dsl.New("chase enemies in sight").
		Tree(dsl.Root(dsl.Sequence(dsl.Sense("CanSeeEnemy").ID("see"), dsl.Action("Chase").ID("chase")).ID("seq")).ID("root")).
		Build(builder.NewCatalog([]string{"Chase"}, []string{"CanSeeEnemy"}))
	require.NoError(t, err)
	require.Empty(t, res.Issues)
	return res.Tree
}

func TestDriver_ChaseScenario(t *testing.T) {
	seeFn, seeCalls := script(true, true, false)
	chaseFn, chaseCalls := script(domain.Running, domain.Running, domain.Failure)
	source := registry.Static{
		ActionList: []domain.Action{domain.NewAction("Chase", chaseFn)},
		SenseList:  []domain.Sense{domain.NewSense("CanSeeEnemy", seeFn)},
	}

	tree := chaseTree(t)
	d := runner.New(runner.WithAgentID("guard"))
	require.NoError(t, d.Activate(context.Background(), tree, source))
	assert.Equal(t, domain.Success, d.Status())

	var got []domain.Status
	for range 3 {
		status, err := d.Tick(context.Background())
		require.NoError(t, err)
		got = append(got, status)
	}

	assert.Equal(t, []domain.Status{domain.Running, domain.Running, domain.Failure}, got)
	assert.Equal(t, domain.Failure, d.Status())
	assert.Equal(t, uint64(3), d.Ticks())

	// The sequence resumed at Chase on ticks 2 and 3, then reset.
	assert.Equal(t, 1, *seeCalls)
	assert.Equal(t, 3, *chaseCalls)
	seq, ok := tree.Find("seq")
	require.True(t, ok)
	assert.Equal(t, 0, seq.(*node.StatefulSequence).Index())
}

// A resumed sequence does not look at its earlier children again, so a
// sense turning false while Chase is still running goes unnoticed.
func TestDriver_ChaseScenario_ResumeSkipsSense(t *testing.T) {
	seeFn, seeCalls := script(true, true, false)
	chaseFn, chaseCalls := script(domain.Running)
	source := registry.Static{
		ActionList: []domain.Action{domain.NewAction("Chase", chaseFn)},
		SenseList:  []domain.Sense{domain.NewSense("CanSeeEnemy", seeFn)},
	}

	tree := chaseTree(t)
	d := runner.New(runner.WithAgentID("guard"))
	require.NoError(t, d.Activate(context.Background(), tree, source))

	var got []domain.Status
	for range 4 {
		status, err := d.Tick(context.Background())
		require.NoError(t, err)
		got = append(got, status)
	}

	assert.Equal(t, []domain.Status{domain.Running, domain.Running, domain.Running, domain.Running}, got)
	assert.Equal(t, 1, *seeCalls)
	assert.Equal(t, 4, *chaseCalls)
	seq, ok := tree.Find("seq")
	require.True(t, ok)
	assert.Equal(t, 1, seq.(*node.StatefulSequence).Index())
}

func TestDriver_PublishersMayReadDriver(t *testing.T) {
	var d *runner.Driver
	var seen []domain.Status
	var reported []uint64
	hooks := domain.LifecycleHooks{
		OnTick: func(context.Context, *domain.TickEvent) {
			seen = append(seen, d.Status())
		},
	}
	reporter := runner.ReporterFunc(func(_ context.Context, snap *ports.Snapshot) error {
		reported = append(reported, d.Snapshot().Tick)
		return nil
	})
	source := registry.Static{
		ActionList: []domain.Action{domain.NewAction("Chase", func() domain.Status { return domain.Running })},
		SenseList:  []domain.Sense{domain.NewSense("CanSeeEnemy", func() bool { return true })},
	}

	d = runner.New(runner.WithHooks(hooks), runner.WithReporter(reporter))
	require.NoError(t, d.Activate(context.Background(), chaseTree(t), source))
	for range 2 {
		_, err := d.Tick(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, []domain.Status{domain.Running, domain.Running}, seen)
	assert.Equal(t, []uint64{1, 2}, reported)
}

func TestDriver_NotActive(t *testing.T) {
	d := runner.New()
	status, err := d.Tick(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotActive)
	assert.Equal(t, domain.StatusInvalid, status)
	assert.Nil(t, d.Snapshot())
	assert.False(t, d.Active())
	assert.ErrorIs(t, d.Run(context.Background(), time.Millisecond), domain.ErrNotActive)
}

func TestDriver_ActivateWithoutTree(t *testing.T) {
	d := runner.New()
	assert.ErrorIs(t, d.Activate(context.Background(), nil, registry.Static{}), domain.ErrNoTree)
	assert.ErrorIs(t, d.Activate(context.Background(), node.New(nil, ""), registry.Static{}), domain.ErrNoTree)
}

func TestDriver_ActivateResets(t *testing.T) {
	source := registry.Static{
		ActionList: []domain.Action{domain.NewAction("Chase", func() domain.Status { return domain.Running })},
		SenseList:  []domain.Sense{domain.NewSense("CanSeeEnemy", func() bool { return true })},
	}
	tree := chaseTree(t)
	d := runner.New()
	ctx := context.Background()

	require.NoError(t, d.Activate(ctx, tree, source))
	_, err := d.Tick(ctx)
	require.NoError(t, err)
	seq, _ := tree.Find("seq")
	require.Equal(t, 1, seq.(*node.StatefulSequence).Index())

	require.NoError(t, d.Activate(ctx, tree, source))
	assert.Equal(t, 0, seq.(*node.StatefulSequence).Index())
	assert.Equal(t, uint64(0), d.Ticks())
}

func TestDriver_ConfigErrors(t *testing.T) {
	var reported []error
	hooks := domain.LifecycleHooks{
		OnConfigError: func(_ context.Context, e *domain.ConfigErrorEvent) {
			reported = append(reported, e.Err)
		},
	}
	source := registry.Static{
		ActionList: []domain.Action{
			domain.NewAction("", func() domain.Status { return domain.Success }),
			domain.NewAction("Chase", func() domain.Status { return domain.Running }),
			domain.NewAction("Chase", func() domain.Status { return domain.Failure }),
		},
	}

	d := runner.New(runner.WithHooks(hooks))
	require.NoError(t, d.Activate(context.Background(), chaseTree(t), source))
	require.Len(t, reported, 2)
	assert.ErrorIs(t, reported[0], domain.ErrEmptyCapabilityName)
	assert.ErrorIs(t, reported[1], domain.ErrDuplicateCapability)

	// CanSeeEnemy was never provided: the sense fails, the tick still completes.
	status, err := d.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Failure, status)
	require.Len(t, reported, 3)
	assert.ErrorIs(t, reported[2], domain.ErrCapabilityNotFound)
}

func TestDriver_TickHooksAndSnapshots(t *testing.T) {
	var ticks []*domain.TickEvent
	hooks := domain.LifecycleHooks{
		OnTick: func(_ context.Context, e *domain.TickEvent) { ticks = append(ticks, e) },
	}
	store := memory.NewStore()
	source := registry.Static{
		ActionList: []domain.Action{domain.NewAction("Chase", func() domain.Status { return domain.Running })},
		SenseList:  []domain.Sense{domain.NewSense("CanSeeEnemy", func() bool { return true })},
	}

	d := runner.New(runner.WithAgentID("guard"), runner.WithHooks(hooks), runner.WithSnapshotStore(store))
	ctx := context.Background()
	require.NoError(t, d.Activate(ctx, chaseTree(t), source))

	before := d.Snapshot()
	require.NotNil(t, before)
	assert.Equal(t, uint64(0), before.Tick)
	assert.Equal(t, domain.Success, before.Status)

	_, err := d.Tick(ctx)
	require.NoError(t, err)

	require.Len(t, ticks, 1)
	assert.Equal(t, uint64(1), ticks[0].Tick)
	assert.Equal(t, "guard", ticks[0].AgentID)
	assert.Equal(t, domain.Running, ticks[0].Status)

	stored, err := store.Load(ctx, "guard")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored.Tick)
	assert.Equal(t, domain.Running, stored.Status)
	assert.Equal(t, "chase enemies in sight", stored.Description)
	require.NotNil(t, stored.Tree.Children[0].Index)
	assert.Equal(t, 1, *stored.Tree.Children[0].Index)

	// Snapshot returns a copy.
	snap := d.Snapshot()
	snap.Tree.Status = domain.Failure
	assert.Equal(t, domain.Running, d.Snapshot().Tree.Status)
}

type failingStore struct{ ports.SnapshotStore }

func (failingStore) Save(context.Context, *ports.Snapshot) error { return errors.New("disk full") }

func TestDriver_PublishErrorKeepsStatus(t *testing.T) {
	source := registry.Static{
		ActionList: []domain.Action{domain.NewAction("Chase", func() domain.Status { return domain.Running })},
		SenseList:  []domain.Sense{domain.NewSense("CanSeeEnemy", func() bool { return true })},
	}
	d := runner.New(runner.WithSnapshotStore(failingStore{}))
	require.NoError(t, d.Activate(context.Background(), chaseTree(t), source))

	status, err := d.Tick(context.Background())
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, domain.Running, status)
	assert.Equal(t, domain.Running, d.Status())
}

func TestDriver_Run(t *testing.T) {
	var n atomic.Int32
	source := registry.Static{
		ActionList: []domain.Action{domain.NewAction("Chase", func() domain.Status {
			n.Add(1)
			return domain.Success
		})},
		SenseList: []domain.Sense{domain.NewSense("CanSeeEnemy", func() bool { return true })},
	}
	d := runner.New()
	require.NoError(t, d.Activate(context.Background(), chaseTree(t), source))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, time.Millisecond) }()

	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	assert.GreaterOrEqual(t, d.Ticks(), uint64(3))
	assert.Error(t, d.Run(context.Background(), 0))
}

func TestReporters(t *testing.T) {
	source := registry.Static{
		ActionList: []domain.Action{domain.NewAction("Chase", func() domain.Status { return domain.Running })},
		SenseList:  []domain.Sense{domain.NewSense("CanSeeEnemy", func() bool { return true })},
	}
	var text, lines bytes.Buffer
	verbose := runner.NewTextReporter(&text, nil)
	verbose.Verbose = true

	d := runner.New(runner.WithReporter(runner.ReporterFunc(func(ctx context.Context, snap *ports.Snapshot) error {
		if err := verbose.Report(ctx, snap); err != nil {
			return err
		}
		return runner.NewJSONReporter(&lines).Report(ctx, snap)
	})))
	require.NoError(t, d.Activate(context.Background(), chaseTree(t), source))
	_, err := d.Tick(context.Background())
	require.NoError(t, err)

	out := text.String()
	assert.True(t, strings.HasPrefix(out, "tick 1: RUNNING\n"), out)
	assert.Contains(t, out, "  Root RUNNING\n")
	assert.Contains(t, out, "    StatefulSequence[1] RUNNING\n")
	assert.Contains(t, out, `      Action("Chase") RUNNING`)

	assert.Contains(t, lines.String(), `"tick":1`)
	assert.Contains(t, lines.String(), `"status":"RUNNING"`)
}
