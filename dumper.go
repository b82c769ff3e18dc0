package fifth

import (
	"fmt"
	"io"
	"strconv"
)

// vmDumper renders a human-readable picture of the machine: the task
// states, the dictionary, and the compiled threads in data space with
// every cell annotated by the word it indexes. Diagnostic only; nothing
// in the interpreter depends on it.
type vmDumper struct {
	vm  *VM
	out io.Writer

	addrWidth int
}

// Dump writes a full annotated dump of the VM to w.
func (vm *VM) Dump(w io.Writer) {
	dump := vmDumper{vm: vm, out: w}
	dump.dump()
}

func (dump *vmDumper) dump() {
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  task: %v ip: %v here: %v\n",
		dump.vm.current, dump.vm.state().ip, dump.vm.space.here())
	if e := dump.vm.lastError; e != ExcNone {
		fmt.Fprintf(dump.out, "  error: %v (%d)\n", e.Description(), int(e))
	}
	dump.dumpStacks()
	dump.dumpDict()
	dump.dumpThreads()
}

func (dump *vmDumper) dumpStacks() {
	fmt.Fprintf(dump.out, "  stack: %v\n", dump.vm.sStack().slice())
	fmt.Fprintf(dump.out, "  rstack: %v\n", dump.vm.rStack().slice())
	fmt.Fprintf(dump.out, "  fstack: %v\n", dump.vm.fStack().slice())
}

func (dump *vmDumper) dumpDict() {
	fmt.Fprintf(dump.out, "# Dictionary (%v words)\n", dump.vm.wordlist.len())
	for i := dump.vm.wordlist.len() - 1; i > 0; i-- {
		w := &dump.vm.wordlist.words[i]
		name := dump.vm.space.getString(w.nfa)
		if name == "" {
			continue
		}
		fmt.Fprintf(dump.out, "  %4v %v @%v", i, name, w.dfa)
		if w.immediate {
			io.WriteString(dump.out, " immediate")
		}
		if w.compileOnly {
			io.WriteString(dump.out, " compile-only")
		}
		if w.hidden {
			io.WriteString(dump.out, " hidden")
		}
		fmt.Fprintln(dump.out)
	}
}

// dumpThreads walks the data field of every colon definition,
// annotating each compiled cell. Words are appended in address order,
// so each thread ends where the next word's name field begins.
func (dump *vmDumper) dumpThreads() {
	if dump.addrWidth == 0 {
		dump.addrWidth = len(strconv.Itoa(dump.vm.space.here())) + 1
	}
	fmt.Fprintf(dump.out, "# Threads\n")
	for i := 1; i < dump.vm.wordlist.len(); i++ {
		w := &dump.vm.wordlist.words[i]
		if !isNestAction(w) {
			continue
		}
		end := dump.vm.space.here()
		if i+1 < dump.vm.wordlist.len() {
			end = dump.vm.wordlist.words[i+1].nfa
		}
		name := dump.vm.space.getString(w.nfa)
		fmt.Fprintf(dump.out, "  : %v\n", name)
		for addr := w.dfa; addr < end; {
			fmt.Fprintf(dump.out, "    @% *v ", dump.addrWidth, addr)
			addr = dump.formatCode(addr)
			fmt.Fprintln(dump.out)
		}
	}
}

// isNestAction reports whether w is a colon definition, which is the
// only word kind whose data field is a thread worth decoding. Go
// function values are not comparable, so probe the code pointer.
func isNestAction(w *word) bool {
	if w.action == nil {
		return false
	}
	return fmt.Sprintf("%p", w.action) == fmt.Sprintf("%p", (*VM).nest)
}

// formatCode annotates one compiled cell, following LIT/FLIT/branch
// operands, and returns the next address.
func (dump *vmDumper) formatCode(addr int) int {
	code := dump.vm.space.getCell(addr)
	addr += cellSize

	if code < 0 || code >= dump.vm.wordlist.len() {
		fmt.Fprintf(dump.out, "?%v", code)
		return addr
	}
	name := dump.vm.space.getString(dump.vm.wordlist.words[code].nfa)
	io.WriteString(dump.out, name)

	switch code {
	case dump.vm.refs.idxLit:
		fmt.Fprintf(dump.out, "(%v)", dump.vm.space.getCell(addr))
		addr += cellSize
	case dump.vm.refs.idxFlit:
		a := alignedFloat(addr)
		fmt.Fprintf(dump.out, "(%v)", dump.vm.space.getFloat(a))
		addr = a + floatSize
	case dump.vm.refs.idxBranch, dump.vm.refs.idxZeroBranch,
		dump.vm.refs.idxDo, dump.vm.refs.idxQdo,
		dump.vm.refs.idxLoop, dump.vm.refs.idxPlusLoop:
		fmt.Fprintf(dump.out, "(@%v)", dump.vm.space.getCell(addr))
		addr += cellSize
	case dump.vm.refs.idxSQuote:
		s := dump.vm.space.getString(addr)
		fmt.Fprintf(dump.out, "(%q)", s)
		addr = aligned(addr + cellSize + len(s))
	}
	return addr
}
