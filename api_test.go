package fifth

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVM_executeAPI(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret(": triple 3 * ;"))
	vm.Push(14)
	require.NoError(t, vm.Execute("triple"))
	assert.Equal(t, 42, vm.Pop())

	assert.ErrorIs(t, vm.Execute("no-such"), ExcUndefinedWord)
}

func TestVM_findAPI(t *testing.T) {
	vm := New()
	defer vm.Close()

	idx, ok := vm.Find("dup")
	assert.True(t, ok)
	assert.Greater(t, idx, 0)

	_, ok = vm.Find("nonexistent-word")
	assert.False(t, ok)
}

func TestVM_wordsAPI(t *testing.T) {
	vm := New()
	defer vm.Close()

	words := vm.Words()
	assert.Contains(t, words, "dup")
	assert.Contains(t, words, ":")
	assert.Contains(t, words, "2constant", "kernel words listed")
	assert.NotContains(t, words, "", "unnamed word excluded")
}

func TestVM_optionsCompose(t *testing.T) {
	var out bytes.Buffer
	var traced []string
	vm := New(Options(
		nil,
		WithOutput(&out),
		WithLogf(func(mess string, args ...interface{}) {
			traced = append(traced, fmt.Sprintf(mess, args...))
		}),
	))
	defer vm.Close()

	require.NoError(t, vm.Interpret(": traced-word 1 . ;"))
	require.NoError(t, vm.Interpret("traced-word"))
	require.NoError(t, vm.Flush())
	assert.Equal(t, "1 ", out.String())
	assert.NotEmpty(t, traced, "define left a trace")
}

func TestVM_outputDrain(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret("42 ."))
	assert.Equal(t, "42 ", vm.Output())
	assert.Empty(t, vm.Output(), "drained")
}

// Random colon definitions built from non-faulting primitives must
// terminate with no error and a model-predicted stack depth.
func TestVM_randomDefinitions(t *testing.T) {
	ops := []struct {
		name    string
		in, out int
	}{
		{"dup", 1, 2}, {"drop", 1, 0}, {"swap", 2, 2}, {"over", 2, 3},
		{"nip", 2, 1}, {"rot", 3, 3}, {"-rot", 3, 3}, {"+", 2, 1},
		{"-", 2, 1}, {"*", 2, 1}, {"1+", 1, 1}, {"1-", 1, 1},
		{"negate", 1, 1}, {"abs", 1, 1}, {"invert", 1, 1},
		{"2dup", 2, 4}, {"2drop", 2, 0},
	}
	rng := rand.New(rand.NewSource(99))

	for round := 0; round < 25; round++ {
		vm := New()

		depth := 0
		var sb strings.Builder
		sb.WriteString(": w")
		for n := 0; n < 40; n++ {
			op := ops[rng.Intn(len(ops))]
			if op.in > depth || depth+op.out-op.in > 100 {
				sb.WriteString(fmt.Sprintf(" %v", rng.Intn(1000)))
				depth++
				continue
			}
			sb.WriteString(" " + op.name)
			depth += op.out - op.in
		}
		sb.WriteString(" ;")

		require.NoError(t, vm.Interpret(sb.String()), "round %v def %q", round, sb.String())
		require.NoError(t, vm.Interpret("w"), "round %v def %q", round, sb.String())
		assert.Equal(t, ExcNone, vm.LastError())
		assert.Equal(t, depth, vm.Depth(), "round %v def %q", round, sb.String())
		vm.Close()
	}
}
