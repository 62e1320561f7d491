package cli

import (
	"os"
	"testing"

	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func mustLoad(t *testing.T, path string) *blueprint.Document {
	t.Helper()
	doc, err := blueprint.Load(path)
	require.NoError(t, err)
	return doc
}
