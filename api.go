package fifth

import (
	"io"
	"strings"
	"time"

	"github.com/fifthvm/fifth/internal/flushio"
	"github.com/fifthvm/fifth/internal/panicerr"
)

// New builds a machine with the core dictionary, output, tools,
// environment, facility, float, and loader vocabularies registered and
// the bootstrap kernel loaded.
func New(opts ...Option) *VM {
	vm := &VM{
		space: newDataSpace(defaultSpaceSize),
		epoch: time.Now(),
		out:   flushio.NewWriteFlusher(io.Discard),
	}
	for i := range vm.tasks {
		vm.tasks[i] = newTask(i == 0)
	}
	Options(opts...).apply(vm)

	vm.addCore()
	vm.addOutput()
	vm.addTools()
	vm.addEnvironment()
	vm.addFacility()
	vm.addFloat()
	vm.addLoader()
	vm.loadKernel()
	return vm
}

// Option configures a VM under construction.
type Option interface{ apply(vm *VM) }

// Options combines options, skipping nils.
func Options(opts ...Option) Option {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(vm *VM) {}

type options []Option

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

// WithOutput directs flushed output at w.
func WithOutput(w io.Writer) Option { return outputOption{w} }

// WithLogf installs a trace logging function.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithSpaceSize sets the data-space size in bytes.
func WithSpaceSize(n int) Option { return spaceSizeOption(n) }

type outputOption struct{ io.Writer }

func (o outputOption) apply(vm *VM) {
	vm.out = flushio.NewWriteFlusher(o.Writer)
	if cl, ok := o.Writer.(io.Closer); ok {
		vm.closers = append(vm.closers, cl)
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) { vm.logfn = logfn }

type spaceSizeOption int

func (n spaceSizeOption) apply(vm *VM) { vm.space = newDataSpace(int(n)) }

// Close releases any closable sinks handed to the VM.
func (vm *VM) Close() (err error) {
	for i := len(vm.closers) - 1; i >= 0; i-- {
		if cerr := vm.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// SetSource replaces the terminal input buffer with s and rewinds the
// parse index.
func (vm *VM) SetSource(s string) {
	if buf := vm.inputBuffer(); buf != nil {
		*buf = s
	}
	vm.state().sourceIdx = 0
}

// Interpret evaluates src line by line as terminal input. It returns
// the pending Exception if evaluation aborts, or any host-level fatal
// error recovered at the boundary.
func (vm *VM) Interpret(src string) error {
	return panicerr.Recover("VM", func() error {
		return vm.interpret(src)
	})
}

func (vm *VM) interpret(src string) error {
	for _, line := range strings.Split(src, "\n") {
		vm.SetSource(line)
		vm.evaluateInput()
		if vm.lastError != ExcNone {
			return vm.lastError
		}
	}
	return nil
}

// Load reads and evaluates the source file at path.
func (vm *VM) Load(path string) error {
	return panicerr.Recover("VM", func() error {
		vm.load(path)
		if vm.lastError != ExcNone {
			return vm.lastError
		}
		return nil
	})
}

// Execute runs the named word and the thread it may start.
func (vm *VM) Execute(name string) error {
	return panicerr.Recover("VM", func() error {
		idx, ok := vm.find(name)
		if !ok {
			return ExcUndefinedWord
		}
		vm.executeWord(idx)
		vm.run()
		vm.checkStacks()
		if vm.lastError != ExcNone {
			return vm.lastError
		}
		return nil
	})
}

// Find resolves a word name to its execution token.
func (vm *VM) Find(name string) (int, bool) { return vm.find(name) }

// LastError returns the pending exception, ExcNone when clear.
func (vm *VM) LastError() Exception { return vm.lastError }

// Reset clears the return stack, switches input back to the terminal
// source, empties the input buffer, returns to interpret state, and
// clears the error. It does not close open file sources.
func (vm *VM) Reset() { vm.reset() }

// Push puts v on the data stack.
func (vm *VM) Push(v int) { vm.sStack().push(v) }

// Pop removes and returns the top of the data stack.
func (vm *VM) Pop() int { return vm.sStack().pop() }

// Depth reports the data stack depth.
func (vm *VM) Depth() int { return int(vm.sStack().len()) }

// Stack returns a copy of the data stack, bottom first.
func (vm *VM) Stack() []int {
	s := vm.sStack().slice()
	out := make([]int, len(s))
	copy(out, s)
	return out
}

// FloatStack returns a copy of the float stack, bottom first.
func (vm *VM) FloatStack() []float64 {
	s := vm.fStack().slice()
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

// Words lists the visible dictionary names, oldest first.
func (vm *VM) Words() []string {
	names := make([]string, 0, vm.wordlist.len())
	for i := 1; i < vm.wordlist.len(); i++ {
		w := &vm.wordlist.words[i]
		if w.hidden {
			continue
		}
		if name := vm.space.getString(w.nfa); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Flush drains the output buffer to the configured sink.
func (vm *VM) Flush() error {
	if vm.outbuf.Len() > 0 {
		if _, err := vm.out.Write(vm.outbuf.Bytes()); err != nil {
			return err
		}
		vm.outbuf.Reset()
	}
	return vm.out.Flush()
}

// Output drains and returns the output buffer without touching the
// configured sink.
func (vm *VM) Output() string {
	s := vm.outbuf.String()
	vm.outbuf.Reset()
	return s
}
