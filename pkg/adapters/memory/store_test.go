package memory_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/ports/tests"
)

var _ ports.SnapshotStore = (*memory.Store)(nil)

func TestMemoryStore_Contract(t *testing.T) {
	tests.SnapshotStoreContractTest(t, memory.NewStore())
}
