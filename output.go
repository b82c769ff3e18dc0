package fifth

import (
	"strconv"
	"strings"
)

// Console output words. Everything writes into the process-wide output
// buffer; the host decides when to flush it to the configured sink.

func (vm *VM) addOutput() {
	vm.addPrimitive("emit", (*VM).emit)
	vm.addPrimitive("type", (*VM).pType)
	vm.addImmediate("s\"", (*VM).sQuote)
	vm.addImmediate(".\"", (*VM).dotQuote)
	vm.addImmediate(".(", (*VM).dotParen)
	vm.addPrimitive(".", (*VM).dot)
	vm.addPrimitive("f.", (*VM).fDot)

	vm.refs.idxSQuote = vm.mustFind("_s\"")
	vm.refs.idxType = vm.mustFind("type")
}

// emit appends the character on the stack to the output buffer.
func (vm *VM) emit() {
	vm.outbuf.WriteRune(rune(vm.sStack().pop()))
}

// pType appends the string at (c-addr u) to the output buffer.
func (vm *VM) pType() {
	addr, n := vm.sStack().pop2()
	if n <= 0 {
		return
	}
	if vm.space.start() <= addr && addr+n <= vm.space.limit() {
		for i := 0; i < n; i++ {
			vm.outbuf.WriteByte(vm.space.getByte(addr + i))
		}
	} else {
		vm.abortWith(ExcInvalidMemoryAddress)
	}
}

// sQuote parses ccc" from the input. Compiling, it lays down the _s"
// runtime followed by the inline string; interpreting, it stages the
// string transiently above here and pushes (c-addr u).
func (vm *VM) sQuote() {
	vm.sStack().push(' ')
	vm.pSkip()
	vm.sStack().push('"')
	vm.pParse()
	s := vm.token
	if vm.state().compiling {
		vm.compileWord(vm.refs.idxSQuote)
		vm.space.compileString(s)
		vm.space.align()
		return
	}
	addr := aligned(vm.space.here())
	if addr+cellSize+len(s) > vm.space.limit() {
		vm.abortWith(ExcParsedStringOverflow)
		return
	}
	vm.space.putCell(addr, len(s))
	for i := 0; i < len(s); i++ {
		vm.space.putByte(addr+cellSize+i, s[i])
	}
	vm.sStack().push2(addr+cellSize, len(s))
}

// dotQuote prints ccc" at run time; interpreting, it prints directly.
func (vm *VM) dotQuote() {
	if vm.state().compiling {
		vm.sQuote()
		vm.compileWord(vm.refs.idxType)
		return
	}
	vm.sStack().push(' ')
	vm.pSkip()
	vm.sStack().push('"')
	vm.pParse()
	vm.outbuf.WriteString(vm.token)
}

// dotParen prints ccc) immediately, even while compiling.
func (vm *VM) dotParen() {
	vm.sStack().push(' ')
	vm.pSkip()
	vm.sStack().push(')')
	vm.pParse()
	vm.outbuf.WriteString(vm.token)
}

// formatCell renders v under the current BASE. Bases outside
// strconv's reach fall back to decimal.
func (vm *VM) formatCell(v int) string {
	base := vm.space.getCell(vm.space.sysAddr(sysBase))
	if base < 2 || base > 36 {
		base = 10
	}
	return strconv.FormatInt(int64(v), base)
}

// dot prints the top of the stack in the current BASE with a trailing
// space.
func (vm *VM) dot() {
	vm.hold.Reset()
	vm.hold.WriteString(vm.formatCell(vm.sStack().pop()))
	vm.hold.WriteByte(' ')
	vm.outbuf.WriteString(vm.hold.String())
}

// fDot prints the top of the float stack with a trailing space.
func (vm *VM) fDot() {
	f := vm.fStack().pop()
	vm.hold.Reset()
	s := strconv.FormatFloat(f, 'f', -1, 64)
	vm.hold.WriteString(s)
	if !strings.ContainsRune(s, '.') {
		vm.hold.WriteString(".0")
	}
	vm.hold.WriteByte(' ')
	vm.outbuf.WriteString(vm.hold.String())
}
