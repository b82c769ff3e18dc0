package fifth

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fifthvm/fifth/internal/logio"
)

func TestVM_dump(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret("77 constant lucky"))
	require.NoError(t, vm.Interpret(": twice lucky 2 * ;"))

	var sb strings.Builder
	vm.Dump(&sb)
	out := sb.String()

	assert.Contains(t, out, "# Dictionary")
	assert.Contains(t, out, "lucky")
	assert.Contains(t, out, ": twice")
	assert.Contains(t, out, "lit(2)", "compiled literal annotated")
	assert.Contains(t, out, "exit", "thread terminated by exit")
}

func TestVM_dumpThroughLogWriter(t *testing.T) {
	vm := New()
	defer vm.Close()
	require.NoError(t, vm.Interpret(": noop2 noop noop ;"))

	var lines []string
	lw := logio.Writer{Logf: func(mess string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(mess, args...))
	}}
	vm.Dump(&lw)
	require.NoError(t, lw.Close())
	assert.NotEmpty(t, lines)
}
