package fifth

import "fmt"

// Programmer conveniences.

func (vm *VM) addTools() {
	vm.addPrimitive("words", (*VM).words)
	vm.addPrimitive(".s", (*VM).dotS)
}

// words lists the visible dictionary, newest first.
func (vm *VM) words() {
	for i := vm.wordlist.len() - 1; i > 0; i-- {
		w := &vm.wordlist.words[i]
		if w.hidden {
			continue
		}
		name := vm.space.getString(w.nfa)
		if name == "" {
			continue
		}
		vm.outbuf.WriteString(name)
		vm.outbuf.WriteByte(' ')
	}
}

// dotS prints the data stack non-destructively: depth, then the cells
// bottom to top in the current BASE.
func (vm *VM) dotS() {
	s := vm.sStack()
	fmt.Fprintf(&vm.outbuf, "<%d> ", s.len())
	for _, v := range s.slice() {
		vm.outbuf.WriteString(vm.formatCell(v))
		vm.outbuf.WriteByte(' ')
	}
}
