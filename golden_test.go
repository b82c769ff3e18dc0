package fifth

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario sources under testdata run against their golden .expect
// files; regenerate with `go run ./scripts`.
func TestVM_golden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.fs")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		file := file
		t.Run(filepath.Base(file), func(t *testing.T) {
			want, err := os.ReadFile(strings.TrimSuffix(file, ".fs") + ".expect")
			require.NoError(t, err)

			var out bytes.Buffer
			vm := New(WithOutput(&out))
			defer vm.Close()
			require.NoError(t, vm.Load(file))
			require.NoError(t, vm.Flush())
			assert.Equal(t, string(want), out.String())
			assert.Empty(t, vm.Stack(), "scenarios leave a clean stack")
		})
	}
}
