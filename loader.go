package fifth

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// source is one open text input feeding the outer interpreter. Sources
// stack: INCLUDE inside a file pushes another frame, and the enclosing
// frame's id and index are restored when it drains.
type source struct {
	name   string
	closer io.Closer
	lines  *bufio.Reader
}

func (vm *VM) addLoader() {
	vm.addPrimitive("included", (*VM).included)
	vm.addPrimitive("include", (*VM).include)
}

// included loads the file named by (c-addr u).
func (vm *VM) included() {
	addr, n := vm.sStack().pop2()
	if n <= 0 || addr < vm.space.start() || addr+n > vm.space.limit() {
		vm.abortWith(ExcInvalidMemoryAddress)
		return
	}
	path := make([]byte, n)
	for i := 0; i < n; i++ {
		path[i] = vm.space.getByte(addr + i)
	}
	vm.load(string(path))
}

// include parses a file name and loads it.
func (vm *VM) include() {
	vm.parseWord()
	if vm.token == "" {
		vm.abortWith(ExcUnexpectedEndOfFile)
		return
	}
	vm.load(vm.token)
}

// load opens path as a new source frame and evaluates it line by line,
// restoring the previous source when done. On a fault the load stops
// and the failing token is reported through the output buffer.
func (vm *VM) load(path string) {
	f, err := os.Open(path)
	if err != nil {
		vm.logf("!", "load %v: %v", path, err)
		vm.abortWith(ExcNonExistentFile)
		return
	}
	vm.loadFrom(f, f, path)
}

// loadFrom runs the loader over an already-open reader. closer may be
// nil for in-memory sources.
func (vm *VM) loadFrom(r io.Reader, closer io.Closer, name string) {
	t := vm.task()
	t.sources = append(t.sources, &source{
		name:   name,
		closer: closer,
		lines:  bufio.NewReader(r),
	})
	t.lines = append(t.lines, "")
	id := len(t.sources)

	st := vm.state()
	prevID, prevIdx := st.sourceID, st.sourceIdx
	st.sourceID = id
	vm.logf("<", "load %v as source %v", name, id)

	src := t.sources[id-1]
	for {
		line, err := src.lines.ReadString('\n')
		if line != "" {
			t.lines[id-1] = line
			vm.state().sourceIdx = 0
			vm.evaluateInput()
			if vm.lastError != ExcNone {
				fmt.Fprintf(&vm.outbuf, "%v: %v? ", name, vm.token)
				break
			}
		}
		if err != nil {
			if err != io.EOF {
				vm.abortWith(ExcFileIOException)
			}
			break
		}
	}

	if src.closer != nil {
		src.closer.Close()
	}
	t.sources = t.sources[:id-1]
	t.lines = t.lines[:id-1]
	st = vm.state()
	st.sourceID = prevID
	st.sourceIdx = prevIdx
}
