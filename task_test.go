package fifth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVM_me(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret("me"))
	assert.Equal(t, []int{1}, vm.Stack(), "terminal task is task 1")
}

// A background task activated with ACTIVATE runs between the terminal
// task's PAUSEs, and only then.
func TestVM_activateAndPause(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret("variable counter"))
	require.NoError(t, vm.Interpret(
		": bg 2 activate begin 1 counter +! pause again ;"))
	require.NoError(t, vm.Interpret(": tick pause ;"))

	require.NoError(t, vm.Interpret("bg"))
	require.NoError(t, vm.Interpret("counter @"))
	assert.Equal(t, 0, vm.Pop(), "background code must not run before a pause")

	for i := 1; i <= 3; i++ {
		require.NoError(t, vm.Interpret("tick"))
		require.NoError(t, vm.Interpret("counter @"))
		assert.Equal(t, i, vm.Pop(), "one background round per pause")
	}
}

func TestVM_suspendResume(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret("variable counter"))
	require.NoError(t, vm.Interpret(
		": bg 2 activate begin 1 counter +! pause again ;"))
	require.NoError(t, vm.Interpret(": tick pause ;"))
	require.NoError(t, vm.Interpret("bg"))

	require.NoError(t, vm.Interpret("tick tick"))
	require.NoError(t, vm.Interpret("2 suspend tick tick"))
	require.NoError(t, vm.Interpret("counter @"))
	assert.Equal(t, 2, vm.Pop(), "suspended task must not run")

	require.NoError(t, vm.Interpret("2 resume tick"))
	require.NoError(t, vm.Interpret("counter @"))
	assert.Equal(t, 3, vm.Pop(), "resumed task runs again")
}

// Round-robin fairness: with several awake tasks, one full rotation of
// pauses visits every one of them.
func TestVM_pauseFairness(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret("create hits 8 cells allot"))
	require.NoError(t, vm.Interpret(
		": spawn activate begin 1 me 1- cells hits + +! pause again ;"))
	for _, task := range []string{"2", "3", "4"} {
		require.NoError(t, vm.Interpret(": bg"+task+" "+task+" spawn ;"))
		require.NoError(t, vm.Interpret("bg"+task))
	}
	require.NoError(t, vm.Interpret(": tick pause ;"))
	require.NoError(t, vm.Interpret("tick tick tick"))

	for task := 2; task <= 4; task++ {
		require.NoError(t, vm.Interpret("hits "+string(rune('0'+task))+" 1- cells + @"))
		got := vm.Pop()
		assert.GreaterOrEqual(t, got, 1, "task %v never ran", task)
	}
}

func TestVM_taskBounds(t *testing.T) {
	vmTestCases{
		vmTest("suspend out of range").withInput(`99 suspend`).expectError(ExcInvalidNumericArgument),
		vmTest("resume out of range").withInput(`0 resume`).expectError(ExcInvalidNumericArgument),
		vmTest("activate out of range").withInput(
			`: t 99 activate ;`, `t`,
		).expectError(ExcInvalidNumericArgument),
	}.run(t)
}
