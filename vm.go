package fifth

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fifthvm/fifth/internal/flushio"
)

const (
	// NumTasks is the size of the fixed cooperative task array. Task 0
	// is the terminal task and the only one with its own input buffer.
	NumTasks = 8

	trueFlag  = -1
	falseFlag = 0

	stackCanary = 0x12345678
	floatCanary = 1.234567890

	defaultSpaceSize = 64 * 1024
)

// state is the per-task interpreter state.
type state struct {
	compiling bool
	ip        int // instruction pointer, a data-space address
	wp        int // index of the word currently executing
	sourceIdx int
	sourceID  int
}

// forwardRefs caches the indices of runtime primitives that the
// compiler needs to emit by number. Populated once after the core
// words are registered.
type forwardRefs struct {
	idxLit        int
	idxFlit       int
	idxExit       int
	idxZeroBranch int
	idxBranch     int
	idxDo         int
	idxQdo        int
	idxLoop       int
	idxPlusLoop   int
	idxSQuote     int
	idxType       int
	idxOver       int
	idxEqual      int
	idxDrop       int
	idxPostpone   int
	idxDoes       int
}

// task is one cooperative task. Every task owns its four stacks and
// interpreter state; the dictionary, data space, and output buffer are
// shared through the VM. Only the terminal task carries an input
// buffer; file sources stack their line buffers in lines.
type task struct {
	awake bool
	state state
	sstk  stack[int]
	rstk  stack[int]
	cstk  stack[control]
	fstk  stack[float64]

	input    string
	hasInput bool

	sources []*source
	lines   []string
}

func newTask(terminal bool) *task {
	return &task{
		sstk:     newStack[int](stackCanary),
		rstk:     newStack[int](stackCanary),
		cstk:     newStack[control](control{kind: ctlCanary}),
		fstk:     newStack[float64](floatCanary),
		hasInput: terminal,
	}
}

// VM is the whole machine: dictionary, data space, task array, output
// plumbing. It is the sole argument to every primitive; there is no
// other module-level state.
type VM struct {
	logging

	current int
	tasks   [NumTasks]*task

	lastError Exception
	handler   int

	wordlist wordlist
	space    *dataSpace

	token  string
	outbuf bytes.Buffer
	hold   strings.Builder

	refs  forwardRefs
	epoch time.Time

	out     flushio.WriteFlusher
	closers []io.Closer
}

func (vm *VM) task() *task             { return vm.tasks[vm.current&(NumTasks-1)] }
func (vm *VM) state() *state           { return &vm.task().state }
func (vm *VM) sStack() *stack[int]     { return &vm.task().sstk }
func (vm *VM) rStack() *stack[int]     { return &vm.task().rstk }
func (vm *VM) cStack() *stack[control] { return &vm.task().cstk }
func (vm *VM) fStack() *stack[float64] { return &vm.task().fstk }

// inputBuffer resolves the current input buffer: the line buffer of the
// active file source when source id is positive, the task's own buffer
// at source id 0. Returns nil for a background task with no input.
func (vm *VM) inputBuffer() *string {
	t := vm.task()
	if id := t.state.sourceID; id > 0 {
		if id-1 < len(t.lines) {
			return &t.lines[id-1]
		}
		return nil
	}
	if t.hasInput {
		return &t.input
	}
	return nil
}

func (vm *VM) awake(i int) bool {
	return i < NumTasks && vm.tasks[i].awake
}

func (vm *VM) setAwake(i int, v bool) {
	if i < NumTasks {
		vm.tasks[i].awake = v
	}
}

// logging carries an injectable trace function; nil disables tracing.
type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
