package fifth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The loop bias transform: with start = limit the biased index begins
// at MinInt, so the increment-overflow exit fires only after a full
// cell's worth of iterations, and one step before the boundary it does
// not fire at all.
func TestDoLoopBias(t *testing.T) {
	rt := math.MinInt + 7 - 7
	assert.Equal(t, math.MinInt, rt)

	sum, over := addOverflows(math.MinInt, 1)
	assert.False(t, over)
	assert.Equal(t, math.MinInt+1, sum)

	_, over = addOverflows(math.MaxInt, 1)
	assert.True(t, over, "index crossing the boundary ends the loop")

	_, over = addOverflows(math.MaxInt-1, 1)
	assert.False(t, over)
}

// MARKER must restore dictionary length, here, the bucket array, and
// last bit-exactly, even across definitions that collide in the same
// hash bucket.
func TestVM_markerExactRestore(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret(": pre 1 ;"))

	wantLen := vm.wordlist.len()
	wantLast := vm.wordlist.last
	wantHere := vm.space.here()
	wantBuckets := vm.wordlist.buckets

	require.NoError(t, vm.Interpret("marker rewind"))
	require.NoError(t, vm.Interpret(": a 1 ; : b 2 ; : c a b + ;"))
	require.NoError(t, vm.Interpret("variable v create w 64 allot"))
	require.NoError(t, vm.Interpret(": pre 2 ;")) // shadow an older word too
	require.NotEqual(t, wantHere, vm.space.here())

	require.NoError(t, vm.Interpret("rewind"))

	assert.Equal(t, wantLen, vm.wordlist.len(), "dictionary length")
	assert.Equal(t, wantLast, vm.wordlist.last, "last index")
	assert.Equal(t, wantHere, vm.space.here(), "here")
	assert.Equal(t, wantBuckets, vm.wordlist.buckets, "bucket array")

	// the rolled-back names are gone, the older ones are back
	_, ok := vm.find("a")
	assert.False(t, ok)
	_, ok = vm.find("rewind")
	assert.False(t, ok)
	require.NoError(t, vm.Interpret("pre"))
	assert.Equal(t, []int{1}, vm.Stack(), "pre-marker definition visible again")
}

// Control-stack balance: a closed structure leaves the control stack
// exactly as the opener found it.
func TestVM_controlStackBalance(t *testing.T) {
	vm := New()
	defer vm.Close()

	for _, src := range []string{
		": t1 if 1 then ;",
		": t2 if 1 else 2 then ;",
		": t3 begin dup 0> while 1- repeat drop ;",
		": t4 begin 1- dup 0= until drop ;",
		": t5 3 0 do i loop ;",
		": t6 case 1 of endof endcase ;",
		": t7 3 0 do 3 0 do i j leave loop loop ;",
	} {
		require.NoError(t, vm.Interpret(src), "src %q", src)
		assert.Zero(t, vm.cStack().len(), "control stack after %q", src)
	}
}

func TestVM_controlMismatches(t *testing.T) {
	vmTestCases{
		vmTest("else without if").withInput(`: t else ;`).expectError(ExcControlStructureMismatch),
		vmTest("repeat without while").withInput(`: t begin repeat ;`).expectError(ExcControlStructureMismatch),
		vmTest("until without begin").withInput(`: t until ;`).expectError(ExcControlStructureMismatch),
		vmTest("loop without do").withInput(`: t loop ;`).expectError(ExcControlStructureMismatch),
		vmTest("endof without of").withInput(`: t case endof ;`).expectError(ExcControlStructureMismatch),
		vmTest("endcase without case").withInput(`: t endcase ;`).expectError(ExcControlStructureMismatch),
		vmTest("dangling if at semicolon").withInput(`: t 1 if ;`).expectError(ExcControlStructureMismatch),
		vmTest("while closed by until").withInput(`: t begin 1 while until ;`).expectError(ExcControlStructureMismatch),
	}.run(t)
}

func TestVM_doesRetargetsOnlyLatest(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret(": const create , does> @ ;"))
	require.NoError(t, vm.Interpret("7 const seven 9 const nine"))
	require.NoError(t, vm.Interpret("seven nine"))
	assert.Equal(t, []int{7, 9}, vm.Stack())
}

func TestVM_doesWithOffsets(t *testing.T) {
	vm := New()
	defer vm.Close()

	// each child adds its creation-time parameter
	require.NoError(t, vm.Interpret(": adder create , does> @ + ;"))
	require.NoError(t, vm.Interpret("3 adder add3 10 adder add10"))
	require.NoError(t, vm.Interpret("5 add3 add10"))
	assert.Equal(t, []int{18}, vm.Stack())
}

func TestVM_compileTimeLiteralForms(t *testing.T) {
	vmTestCases{
		vmTest("compiled ints").withInput(
			`: nums 1 -2 $10 ;`, `nums`,
		).expectStack(1, -2, 16),

		vmTest("compiled char").withInput(
			`: c 'x' ;`, `c`,
		).expectStack('x'),

		vmTest("nested structures").withInput(
			`: classify dup 0< if drop -1 else dup 0> if drop 1 else drop 0 then then ;`,
			`-5 classify 0 classify 9 classify`,
		).expectStack(-1, 0, 1),
	}.run(t)
}

// exit compiled into a definition returns out of it early.
func TestVM_exitInDefinition(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret(": t 1 exit 2 ;"))
	require.NoError(t, vm.Interpret("t"))
	assert.Equal(t, []int{1}, vm.Stack())
}

// [ and ] switch between compiling and interpreting inside a colon
// definition.
func TestVM_bracketStateSwitch(t *testing.T) {
	vm := New()
	defer vm.Close()

	require.NoError(t, vm.Interpret("variable seen"))
	require.NoError(t, vm.Interpret(": t [ 42 seen ! ] 7 ;"))
	require.NoError(t, vm.Interpret("seen @"))
	assert.Equal(t, []int{42}, vm.Stack(), "bracketed code ran at compile time")

	vm.Pop()
	require.NoError(t, vm.Interpret("t"))
	assert.Equal(t, []int{7}, vm.Stack())
}

func TestVM_compileOnlyWordsRejectedInterpretively(t *testing.T) {
	for _, name := range []string{
		"exit", "lit", "branch", "0branch", "_do", "_qdo", "_loop",
		"_+loop", "unloop", "leave", "i", "j", ">r", "r>", "r@",
		"2>r", "2r>", "2r@", "compile,", "pause", "activate",
	} {
		vm := New()
		err := vm.Interpret(name)
		assert.ErrorIs(t, err, ExcInterpretingACompileOnlyWord, "word %v", name)
		vm.Close()
	}
}

func TestVM_returnStackPairs(t *testing.T) {
	vmTestCases{
		vmTest("2>r 2r>").withInput(
			`: t 1 2 2>r 3 2r> ;`, `t`,
		).expectStack(3, 1, 2),

		vmTest("2r@ peeks").withInput(
			`: t 1 2 2>r 2r@ 2r> 2drop ;`, `t`,
		).expectStack(1, 2),
	}.run(t)
}
