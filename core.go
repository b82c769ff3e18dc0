package fifth

import "math"

// addCore registers the interpreter's primitive words. Word index 0 is
// the unnamed unwind word: it terminates bucket chains, and as the
// default abort handler it kicks the instruction pointer out of data
// space so the inner loop returns to the host.
func (vm *VM) addCore() {
	vm.addPrimitive("", (*VM).unwind)
	vm.addPrimitive("noop", (*VM).noop)

	vm.addCompileOnly("exit", (*VM).exit)
	vm.addCompileOnly("lit", (*VM).lit)
	vm.addCompileOnly("flit", (*VM).flit)
	vm.addCompileOnly("_s\"", (*VM).pSQuote)
	vm.addCompileOnly("branch", (*VM).branch)
	vm.addCompileOnly("0branch", (*VM).zeroBranch)
	vm.addCompileOnly("_do", (*VM).pDo)
	vm.addCompileOnly("_qdo", (*VM).pQdo)
	vm.addCompileOnly("_loop", (*VM).pLoop)
	vm.addCompileOnly("_+loop", (*VM).pPlusLoop)
	vm.addCompileOnly("unloop", (*VM).unloop)
	vm.addCompileOnly("leave", (*VM).leave)
	vm.addCompileOnly("i", (*VM).pI)
	vm.addCompileOnly("j", (*VM).pJ)
	vm.addCompileOnly(">r", (*VM).toR)
	vm.addCompileOnly("r>", (*VM).rFrom)
	vm.addCompileOnly("r@", (*VM).rFetch)
	vm.addCompileOnly("2>r", (*VM).twoToR)
	vm.addCompileOnly("2r>", (*VM).twoRFrom)
	vm.addCompileOnly("2r@", (*VM).twoRFetch)
	vm.addCompileOnly("compile,", (*VM).compileComma)
	vm.addCompileOnly("_postpone", (*VM).pPostpone)
	vm.addCompileOnly("_does", (*VM).pDoes)

	vm.addPrimitive("execute", (*VM).execute)
	vm.addPrimitive("dup", (*VM).dup)
	vm.addPrimitive("drop", (*VM).pDrop)
	vm.addPrimitive("swap", (*VM).swap)
	vm.addPrimitive("over", (*VM).over)
	vm.addPrimitive("nip", (*VM).nip)
	vm.addPrimitive("depth", (*VM).depth)
	vm.addPrimitive("?stacks", (*VM).checkStacks)
	vm.addPrimitive("0<", (*VM).zeroLess)
	vm.addPrimitive("=", (*VM).equals)
	vm.addPrimitive("<", (*VM).lessThan)
	vm.addPrimitive("invert", (*VM).invert)
	vm.addPrimitive("and", (*VM).and)
	vm.addPrimitive("or", (*VM).or)
	vm.addPrimitive("xor", (*VM).xor)
	vm.addPrimitive("lshift", (*VM).lshift)
	vm.addPrimitive("rshift", (*VM).rshift)
	vm.addPrimitive("1+", (*VM).onePlus)
	vm.addPrimitive("1-", (*VM).oneMinus)
	vm.addPrimitive("-", (*VM).minus)
	vm.addPrimitive("+", (*VM).plus)
	vm.addPrimitive("*", (*VM).star)
	vm.addPrimitive("/mod", (*VM).slashMod)
	vm.addPrimitive("cell+", (*VM).cellPlus)
	vm.addPrimitive("cells", (*VM).cells)
	vm.addPrimitive("@", (*VM).fetch)
	vm.addPrimitive("!", (*VM).store)
	vm.addPrimitive("char+", (*VM).charPlus)
	vm.addPrimitive("here", (*VM).pHere)
	vm.addPrimitive("allot", (*VM).pAllot)
	vm.addPrimitive("aligned", (*VM).pAligned)
	vm.addPrimitive("align", (*VM).pAlign)
	vm.addPrimitive("c@", (*VM).cFetch)
	vm.addPrimitive("c!", (*VM).cStore)
	vm.addPrimitive("move", (*VM).pMove)
	vm.addPrimitive("base", (*VM).pBase)
	vm.addPrimitive("immediate", (*VM).immediate)
	vm.addPrimitive("compile-only", (*VM).compileOnly)

	vm.addImmediate("(", (*VM).immParen)
	vm.addImmediate("\\", (*VM).immBackslash)
	vm.addImmediate("[", (*VM).leftBracket)
	vm.addImmediateAndCompileOnly("[']", (*VM).bracketTick)
	vm.addImmediateAndCompileOnly("[char]", (*VM).bracketChar)
	vm.addImmediateAndCompileOnly(";", (*VM).semicolon)
	vm.addImmediateAndCompileOnly("if", (*VM).immIf)
	vm.addImmediateAndCompileOnly("else", (*VM).immElse)
	vm.addImmediateAndCompileOnly("then", (*VM).immThen)
	vm.addImmediateAndCompileOnly("case", (*VM).immCase)
	vm.addImmediateAndCompileOnly("of", (*VM).immOf)
	vm.addImmediateAndCompileOnly("endof", (*VM).immEndof)
	vm.addImmediateAndCompileOnly("endcase", (*VM).immEndcase)
	vm.addImmediateAndCompileOnly("begin", (*VM).immBegin)
	vm.addImmediateAndCompileOnly("while", (*VM).immWhile)
	vm.addImmediateAndCompileOnly("repeat", (*VM).immRepeat)
	vm.addImmediateAndCompileOnly("until", (*VM).immUntil)
	vm.addImmediateAndCompileOnly("again", (*VM).immAgain)
	vm.addImmediateAndCompileOnly("recurse", (*VM).immRecurse)
	vm.addImmediateAndCompileOnly("do", (*VM).immDo)
	vm.addImmediateAndCompileOnly("?do", (*VM).immQdo)
	vm.addImmediateAndCompileOnly("loop", (*VM).immLoop)
	vm.addImmediateAndCompileOnly("+loop", (*VM).immPlusLoop)
	vm.addImmediateAndCompileOnly("does>", (*VM).immDoes)
	vm.addImmediateAndCompileOnly("postpone", (*VM).postpone)

	vm.addPrimitive("true", (*VM).pTrue)
	vm.addPrimitive("false", (*VM).pFalse)
	vm.addPrimitive("not", (*VM).zeroEquals)
	vm.addPrimitive("0=", (*VM).zeroEquals)
	vm.addPrimitive("0>", (*VM).zeroGreater)
	vm.addPrimitive("0<>", (*VM).zeroNotEquals)
	vm.addPrimitive(">", (*VM).greaterThan)
	vm.addPrimitive("<>", (*VM).notEquals)
	vm.addPrimitive("within", (*VM).within)
	vm.addPrimitive("rot", (*VM).rot)
	vm.addPrimitive("-rot", (*VM).minusRot)
	vm.addPrimitive("pick", (*VM).pick)
	vm.addPrimitive("2dup", (*VM).twoDup)
	vm.addPrimitive("2drop", (*VM).twoDrop)
	vm.addPrimitive("2swap", (*VM).twoSwap)
	vm.addPrimitive("2over", (*VM).twoOver)
	vm.addPrimitive("/", (*VM).slash)
	vm.addPrimitive("mod", (*VM).pMod)
	vm.addPrimitive("abs", (*VM).abs)
	vm.addPrimitive("negate", (*VM).negate)
	vm.addPrimitive("parse-word", (*VM).parseWord)
	vm.addPrimitive("char", (*VM).pChar)
	vm.addPrimitive("_skip", (*VM).pSkip)
	vm.addPrimitive("_parse", (*VM).pParse)
	vm.addPrimitive(":", (*VM).colon)
	vm.addPrimitive("constant", (*VM).constant)
	vm.addPrimitive("variable", (*VM).variable)
	vm.addPrimitive("create", (*VM).create)
	vm.addPrimitive("'", (*VM).tick)
	vm.addPrimitive(">body", (*VM).toBody)
	vm.addPrimitive("]", (*VM).rightBracket)
	vm.addPrimitive(",", (*VM).comma)
	vm.addPrimitive("marker", (*VM).marker)
	vm.addPrimitive("handler!", (*VM).handlerStore)
	vm.addPrimitive("error", (*VM).pError)
	vm.addPrimitive(".error", (*VM).dotError)
	vm.addPrimitive("0error", (*VM).clearError)
	vm.addPrimitive("0stacks", (*VM).clearStacks)
	vm.addPrimitive("reset", (*VM).reset)
	vm.addPrimitive("abort", (*VM).abort)
	vm.addPrimitive("compiling?", (*VM).pCompiling)
	vm.addPrimitive("token-empty?", (*VM).tokenEmpty)
	vm.addPrimitive(".token", (*VM).dotToken)
	vm.addPrimitive("!token", (*VM).storeToken)
	vm.addPrimitive("compile-token", (*VM).compileToken)
	vm.addPrimitive("interpret-token", (*VM).interpretToken)
	vm.addPrimitive("source-id", (*VM).pSourceID)
	vm.addPrimitive("source-id!", (*VM).pSetSourceID)
	vm.addPrimitive("source-idx", (*VM).pSourceIdx)
	vm.addPrimitive("source-idx!", (*VM).pSetSourceIdx)

	vm.refs.idxLit = vm.mustFind("lit")
	vm.refs.idxFlit = vm.mustFind("flit")
	vm.refs.idxExit = vm.mustFind("exit")
	vm.refs.idxZeroBranch = vm.mustFind("0branch")
	vm.refs.idxBranch = vm.mustFind("branch")
	vm.refs.idxDo = vm.mustFind("_do")
	vm.refs.idxQdo = vm.mustFind("_qdo")
	vm.refs.idxLoop = vm.mustFind("_loop")
	vm.refs.idxPlusLoop = vm.mustFind("_+loop")
	vm.refs.idxOver = vm.mustFind("over")
	vm.refs.idxEqual = vm.mustFind("=")
	vm.refs.idxDrop = vm.mustFind("drop")
	vm.refs.idxPostpone = vm.mustFind("_postpone")
	vm.refs.idxDoes = vm.mustFind("_does")

	// leave gets its own compilation semantics so an orphaned LEAVE is
	// rejected at compile time.
	idxLeave := vm.mustFind("leave")
	vm.wordlist.words[idxLeave].compileSem = (*VM).compileLeave

	vm.addCompileOnly("pause", (*VM).pause)
	vm.addCompileOnly("activate", (*VM).activate)
	vm.addPrimitive("me", (*VM).me)
	vm.addPrimitive("suspend", (*VM).suspend)
	vm.addPrimitive("resume", (*VM).resume)

	vm.setAwake(0, true)
}

func (vm *VM) addPrimitive(name string, action func(*VM)) {
	nfa := vm.space.compileString(name)
	vm.space.align()
	vm.wordlist.push(name, word{
		action:     action,
		compileSem: (*VM).compileWord,
		nfa:        nfa,
		dfa:        vm.space.here(),
	})
}

func (vm *VM) addImmediate(name string, action func(*VM)) {
	vm.addPrimitive(name, action)
	vm.immediate()
}

func (vm *VM) addCompileOnly(name string, action func(*VM)) {
	vm.addPrimitive(name, action)
	vm.compileOnly()
}

func (vm *VM) addImmediateAndCompileOnly(name string, action func(*VM)) {
	vm.addPrimitive(name, action)
	vm.immediate()
	vm.compileOnly()
}

// Set the last definition immediate.
func (vm *VM) immediate() {
	vm.wordlist.words[vm.wordlist.last].immediate = true
}

// Set the last definition compile-only.
func (vm *VM) compileOnly() {
	vm.wordlist.words[vm.wordlist.last].compileOnly = true
}

func (vm *VM) mustFind(name string) int {
	i, ok := vm.find(name)
	if !ok {
		panic("undefined core word " + name)
	}
	return i
}

// find walks the bucket for name's hash from the most recent definition
// back, returning the first non-hidden word whose stored name matches
// case-insensitively.
func (vm *VM) find(name string) (int, bool) {
	hash := wordHash(name)
	w := vm.wordlist.buckets[hash%bucketCount]
	for w != 0 {
		entry := &vm.wordlist.words[w]
		if !entry.hidden && entry.hash == hash {
			if equalsIgnoreCase(vm.space.getString(entry.nfa), name) {
				return w, true
			}
		}
		w = entry.link
	}
	return 0, false
}

func equalsIgnoreCase(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// executeWord dispatches the action of word i. Anything outside the
// dictionary is a fault, not a crash: compiled threads are data.
func (vm *VM) executeWord(i int) {
	vm.state().wp = i
	if i >= 0 && i < vm.wordlist.len() {
		vm.wordlist.words[i].action(vm)
	} else {
		vm.abortWith(ExcUnsupportedOperation)
	}
}

// run is the inner interpreter: execute word indices at the instruction
// pointer until it leaves data space. The task state is re-resolved
// every iteration because a primitive (PAUSE) may have switched tasks
// under us.
func (vm *VM) run() {
	for {
		st := vm.state()
		ip := st.ip
		if ip < vm.space.start() || ip+cellSize > vm.space.limit() {
			return
		}
		w := vm.space.getCell(ip)
		st.ip = ip + cellSize
		vm.executeWord(w)
	}
}

// unwind is the action of word 0 and the default abort handler: it
// forces the inner interpreter to return to the host by clearing the
// instruction pointer out of data space.
func (vm *VM) unwind() {
	vm.state().ip = 0
}

func (vm *VM) noop() {}

// Compilation semantics. The default for every word is to append its
// index to the current definition.

func (vm *VM) compileWord(idx int) {
	vm.space.compileCell(idx)
}

func (vm *VM) compileNest(idx int) { vm.compileWord(idx) }

func (vm *VM) compileVar(idx int) { vm.compileWord(idx) }

func (vm *VM) compileConst(idx int) { vm.compileWord(idx) }

func (vm *VM) compileFConst(idx int) { vm.compileWord(idx) }

func (vm *VM) compileUnmark(idx int) { vm.compileWord(idx) }

func (vm *VM) compileInteger(i int) {
	vm.compileWord(vm.refs.idxLit)
	vm.space.compileCell(i)
}

func (vm *VM) compileFloatLit(f float64) {
	vm.compileWord(vm.refs.idxFlit)
	vm.space.alignFloat()
	vm.space.compileFloat(f)
}

func (vm *VM) compileBranch(destination int) int {
	vm.compileWord(vm.refs.idxBranch)
	vm.space.compileCell(destination)
	return vm.space.here()
}

func (vm *VM) compileZeroBranch(destination int) int {
	vm.compileWord(vm.refs.idxZeroBranch)
	vm.space.compileCell(destination)
	return vm.space.here()
}

// lit pushes the cell following it in the thread.
func (vm *VM) lit() {
	st := vm.state()
	vm.sStack().push(vm.space.getCell(st.ip))
	st.ip += cellSize
}

// flit pushes the float-aligned 8 bytes following it in the thread.
func (vm *VM) flit() {
	st := vm.state()
	ip := alignedFloat(st.ip)
	vm.fStack().push(vm.space.getFloat(ip))
	st.ip = ip + floatSize
}

// pSQuote is the runtime of S": push the address and length of the
// inline string and hop the instruction pointer over it.
func (vm *VM) pSQuote() {
	st := vm.state()
	cnt := vm.space.getCell(st.ip)
	addr := st.ip + cellSize
	vm.sStack().push2(addr, cnt)
	st.ip = aligned(st.ip + cellSize + cnt)
}

// branch loads its following cell as the new instruction pointer.
func (vm *VM) branch() {
	st := vm.state()
	st.ip = vm.space.getCell(st.ip)
}

func (vm *VM) zeroBranch() {
	if vm.sStack().pop() == 0 {
		vm.branch()
	} else {
		vm.state().ip += cellSize
	}
}

// The DO/LOOP runtime biases the index so a single overflow check
// detects completion: _do pushes rn = start - rt and rt = MinInt +
// start - limit, and _loop stays in the loop while rt+1 does not
// overflow. I reconstructs the index as rt + rn.

func (vm *VM) pDo() {
	st := vm.state()
	vm.rStack().push(st.ip)
	st.ip += cellSize
	n, t := vm.sStack().pop2()
	rt := math.MinInt + t - n
	rn := t - rt
	vm.rStack().push2(rn, rt)
}

func (vm *VM) pQdo() {
	n1, n2 := vm.sStack().pop2()
	if n1 == n2 {
		vm.branch()
		return
	}
	st := vm.state()
	vm.rStack().push(st.ip)
	st.ip += cellSize
	rt := math.MinInt + n2 - n1
	rn := n2 - rt
	vm.rStack().push2(rn, rt)
}

// addOverflows adds a and b, reporting signed overflow.
func addOverflows(a, b int) (int, bool) {
	sum := a + b
	return sum, (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0)
}

func (vm *VM) pLoop() {
	rt := vm.rStack().pop()
	if sum, over := addOverflows(rt, 1); !over {
		vm.rStack().push(sum)
		vm.branch()
	} else {
		vm.rStack().pop2()
		vm.state().ip += cellSize
	}
}

func (vm *VM) pPlusLoop() {
	rt := vm.rStack().pop()
	t := vm.sStack().pop()
	if sum, over := addOverflows(rt, t); !over {
		vm.rStack().push(sum)
		vm.branch()
	} else {
		vm.rStack().pop2()
		vm.state().ip += cellSize
	}
}

// unloop discards the two bias cells and the saved loop header address.
func (vm *VM) unloop() {
	vm.rStack().pop3()
}

// leave discards the loop parameters and jumps through the loop-exit
// slot that LOOP patched into the loop header.
func (vm *VM) leave() {
	third, _, _ := vm.rStack().pop3()
	if vm.rStack().underflow() {
		vm.abortWith(ExcReturnStackUnderflow)
		return
	}
	vm.state().ip = vm.space.getCell(third)
}

func (vm *VM) pI() {
	r := vm.rStack()
	rt := r.at(r.len() - 1)
	rn := r.at(r.len() - 2)
	vm.sStack().push(rt + rn)
}

func (vm *VM) pJ() {
	r := vm.rStack()
	if r.len() < 6 {
		vm.abortWith(ExcReturnStackUnderflow)
		return
	}
	jt := r.at(r.len() - 4)
	jn := r.at(r.len() - 5)
	vm.sStack().push(jt + jn)
}

// nest is the action of a colon definition: push the instruction
// pointer and continue in the word's data field.
func (vm *VM) nest() {
	st := vm.state()
	vm.rStack().push(st.ip)
	st.ip = vm.wordlist.words[st.wp].dfa
}

// exit pops the return stack into the instruction pointer.
func (vm *VM) exit() {
	vm.state().ip = vm.rStack().pop()
}

// pVar is the action of CREATEd words: push the data-field address.
func (vm *VM) pVar() {
	vm.sStack().push(vm.wordlist.words[vm.state().wp].dfa)
}

// pConst is the action of CONSTANT words: push the data-field cell.
func (vm *VM) pConst() {
	dfa := vm.wordlist.words[vm.state().wp].dfa
	vm.sStack().push(vm.space.getCell(dfa))
}

// does is the action installed by DOES>: push the data-field address,
// then continue in the parent's thread after the DOES>.
func (vm *VM) does() {
	st := vm.state()
	w := &vm.wordlist.words[st.wp]
	vm.sStack().push(w.dfa)
	vm.rStack().push(st.ip)
	st.ip = w.doer
}

// pDoes is the runtime of DOES>: retarget the most recent definition at
// the thread following the exit that comes right after this word.
func (vm *VM) pDoes() {
	doer := vm.state().ip + cellSize
	w := &vm.wordlist.words[vm.wordlist.last]
	w.doer = doer
	w.action = (*VM).does
}

// pPostpone executes the compilation semantics of the xt on the stack:
// immediate words run now, everything else gets a reference compiled.
func (vm *VM) pPostpone() {
	xt := vm.sStack().pop()
	if xt < 0 || xt >= vm.wordlist.len() {
		vm.abortWith(ExcInvalidPostpone)
		return
	}
	if vm.wordlist.words[xt].immediate {
		vm.executeWord(xt)
	} else {
		vm.wordlist.words[xt].compileSem(vm, xt)
	}
}

// Stack primitives. These run between every pair of ?stacks checks, so
// like the teacher's they index blindly and let the canary fences
// catch misuse.

func (vm *VM) execute() {
	t := vm.sStack().pop()
	vm.executeWord(t)
}

func (vm *VM) dup() {
	s := vm.sStack()
	s.depth++
	s.inner[s.depth-1] = s.inner[s.depth-2]
}

func (vm *VM) pDrop() {
	vm.sStack().depth--
}

func (vm *VM) swap() {
	s := vm.sStack()
	s.inner[s.depth-1], s.inner[s.depth-2] = s.inner[s.depth-2], s.inner[s.depth-1]
}

func (vm *VM) over() {
	s := vm.sStack()
	s.depth++
	s.inner[s.depth-1] = s.inner[s.depth-3]
}

func (vm *VM) nip() {
	s := vm.sStack()
	s.inner[s.depth-2] = s.inner[s.depth-1]
	s.depth--
}

func (vm *VM) rot() {
	s := vm.sStack()
	t, n := s.inner[s.depth-1], s.inner[s.depth-2]
	s.inner[s.depth-1] = s.inner[s.depth-3]
	s.inner[s.depth-2] = t
	s.inner[s.depth-3] = n
}

func (vm *VM) minusRot() {
	s := vm.sStack()
	t, n := s.inner[s.depth-1], s.inner[s.depth-2]
	s.inner[s.depth-2] = s.inner[s.depth-3]
	s.inner[s.depth-3] = t
	s.inner[s.depth-1] = n
}

// pick copies the nth entry to the top. The index wraps at 8 bits; that
// is the documented behavior, not standard Forth.
func (vm *VM) pick() {
	s := vm.sStack()
	t := uint8(s.inner[s.depth-1])
	s.inner[s.depth-1] = s.inner[s.depth-(t+2)]
}

func (vm *VM) depth() {
	n := vm.sStack().len()
	vm.sStack().push(int(n))
}

func (vm *VM) twoDup() {
	s := vm.sStack()
	s.depth += 2
	s.inner[s.depth-1] = s.inner[s.depth-3]
	s.inner[s.depth-2] = s.inner[s.depth-4]
}

func (vm *VM) twoDrop() {
	vm.sStack().depth -= 2
}

func (vm *VM) twoSwap() {
	s := vm.sStack()
	t, n := s.inner[s.depth-1], s.inner[s.depth-2]
	s.inner[s.depth-1] = s.inner[s.depth-3]
	s.inner[s.depth-2] = s.inner[s.depth-4]
	s.inner[s.depth-3] = t
	s.inner[s.depth-4] = n
}

func (vm *VM) twoOver() {
	s := vm.sStack()
	s.depth += 2
	s.inner[s.depth-1] = s.inner[s.depth-5]
	s.inner[s.depth-2] = s.inner[s.depth-6]
}

// Arithmetic. All wrapping, matching two's-complement cell semantics.

func (vm *VM) onePlus() {
	s := vm.sStack()
	s.inner[s.depth-1]++
}

func (vm *VM) oneMinus() {
	s := vm.sStack()
	s.inner[s.depth-1]--
}

func (vm *VM) plus() {
	s := vm.sStack()
	s.inner[s.depth-2] += s.inner[s.depth-1]
	s.depth--
}

func (vm *VM) minus() {
	s := vm.sStack()
	s.inner[s.depth-2] -= s.inner[s.depth-1]
	s.depth--
}

func (vm *VM) star() {
	s := vm.sStack()
	s.inner[s.depth-2] *= s.inner[s.depth-1]
	s.depth--
}

func (vm *VM) slash() {
	s := vm.sStack()
	t, n := s.inner[s.depth-1], s.inner[s.depth-2]
	if t == 0 {
		vm.abortWith(ExcDivisionByZero)
		return
	}
	s.inner[s.depth-2] = n / t
	s.depth--
}

func (vm *VM) pMod() {
	s := vm.sStack()
	t, n := s.inner[s.depth-1], s.inner[s.depth-2]
	if t == 0 {
		vm.abortWith(ExcDivisionByZero)
		return
	}
	s.inner[s.depth-2] = n % t
	s.depth--
}

func (vm *VM) slashMod() {
	s := vm.sStack()
	t, n := s.inner[s.depth-1], s.inner[s.depth-2]
	if t == 0 {
		vm.abortWith(ExcDivisionByZero)
		return
	}
	s.inner[s.depth-2] = n % t
	s.inner[s.depth-1] = n / t
}

func (vm *VM) abs() {
	s := vm.sStack()
	if t := s.inner[s.depth-1]; t < 0 {
		s.inner[s.depth-1] = -t
	}
}

func (vm *VM) negate() {
	s := vm.sStack()
	s.inner[s.depth-1] = -s.inner[s.depth-1]
}

func boolFlag(b bool) int {
	if b {
		return trueFlag
	}
	return falseFlag
}

func (vm *VM) zeroLess() {
	s := vm.sStack()
	s.inner[s.depth-1] = boolFlag(s.inner[s.depth-1] < 0)
}

func (vm *VM) zeroEquals() {
	s := vm.sStack()
	s.inner[s.depth-1] = boolFlag(s.inner[s.depth-1] == 0)
}

func (vm *VM) zeroGreater() {
	s := vm.sStack()
	s.inner[s.depth-1] = boolFlag(s.inner[s.depth-1] > 0)
}

func (vm *VM) zeroNotEquals() {
	s := vm.sStack()
	s.inner[s.depth-1] = boolFlag(s.inner[s.depth-1] != 0)
}

func (vm *VM) equals() {
	n, t := vm.sStack().pop2()
	vm.sStack().push(boolFlag(n == t))
}

func (vm *VM) notEquals() {
	n, t := vm.sStack().pop2()
	vm.sStack().push(boolFlag(n != t))
}

func (vm *VM) lessThan() {
	n, t := vm.sStack().pop2()
	vm.sStack().push(boolFlag(n < t))
}

func (vm *VM) greaterThan() {
	n, t := vm.sStack().pop2()
	vm.sStack().push(boolFlag(n > t))
}

// within keeps the documented n2 <= n1 < n3 semantics, which diverge
// from Forth 2012's circular definition when n2 > n3.
func (vm *VM) within() {
	x1, x2, x3 := vm.sStack().pop3()
	vm.sStack().push(boolFlag(x2 <= x1 && x1 < x3))
}

func (vm *VM) pTrue()  { vm.sStack().push(trueFlag) }
func (vm *VM) pFalse() { vm.sStack().push(falseFlag) }

func (vm *VM) invert() {
	s := vm.sStack()
	s.inner[s.depth-1] = ^s.inner[s.depth-1]
}

func (vm *VM) and() {
	n, t := vm.sStack().pop2()
	vm.sStack().push(n & t)
}

func (vm *VM) or() {
	n, t := vm.sStack().pop2()
	vm.sStack().push(n | t)
}

func (vm *VM) xor() {
	n, t := vm.sStack().pop2()
	vm.sStack().push(n ^ t)
}

func (vm *VM) lshift() {
	n, t := vm.sStack().pop2()
	vm.sStack().push(n << (uint(t) % uint(cellSize*8)))
}

func (vm *VM) rshift() {
	n, t := vm.sStack().pop2()
	vm.sStack().push(int(uint(n) >> (uint(t) % uint(cellSize*8))))
}

// Memory access words validate against [start, limit) and raise
// InvalidMemoryAddress, unlike the compile-time writers which treat
// exhaustion as fatal.

func (vm *VM) fetch() {
	t := vm.sStack().pop()
	if vm.space.start() < t && t+cellSize <= vm.space.limit() {
		vm.sStack().push(vm.space.getCell(t))
	} else {
		vm.abortWith(ExcInvalidMemoryAddress)
	}
}

func (vm *VM) store() {
	n, t := vm.sStack().pop2()
	if vm.space.start() < t && t+cellSize <= vm.space.limit() {
		vm.space.putCell(t, n)
	} else {
		vm.abortWith(ExcInvalidMemoryAddress)
	}
}

func (vm *VM) cFetch() {
	t := vm.sStack().pop()
	if vm.space.has(t) {
		vm.sStack().push(int(vm.space.getByte(t)))
	} else {
		vm.abortWith(ExcInvalidMemoryAddress)
	}
}

func (vm *VM) cStore() {
	n, t := vm.sStack().pop2()
	if vm.space.start() < t && t < vm.space.limit() {
		vm.space.putByte(t, byte(n))
	} else {
		vm.abortWith(ExcInvalidMemoryAddress)
	}
}

// pMove copies u bytes from addr1 to addr2, walking high-to-low when
// the regions overlap with the source below the destination.
func (vm *VM) pMove() {
	addr1, addr2, u := vm.sStack().pop3()
	if u <= 0 {
		return
	}
	if vm.space.start() < addr1 && addr1+u <= vm.space.limit() &&
		vm.space.start() < addr2 && addr2+u <= vm.space.limit() {
		if addr1 < addr2 {
			for i := u - 1; i >= 0; i-- {
				vm.space.putByte(addr2+i, vm.space.getByte(addr1+i))
			}
		} else {
			for i := 0; i < u; i++ {
				vm.space.putByte(addr2+i, vm.space.getByte(addr1+i))
			}
		}
	} else {
		vm.abortWith(ExcInvalidMemoryAddress)
	}
}

func (vm *VM) charPlus() {
	s := vm.sStack()
	s.inner[s.depth-1]++
}

func (vm *VM) cellPlus() {
	s := vm.sStack()
	s.inner[s.depth-1] += cellSize
}

func (vm *VM) cells() {
	s := vm.sStack()
	s.inner[s.depth-1] *= cellSize
}

func (vm *VM) pHere() {
	vm.sStack().push(vm.space.here())
}

func (vm *VM) pAllot() {
	if e := vm.space.allot(vm.sStack().pop()); e != ExcNone {
		vm.abortWith(e)
	}
}

func (vm *VM) pAligned() {
	s := vm.sStack()
	s.inner[s.depth-1] = aligned(s.inner[s.depth-1])
}

func (vm *VM) pAlign() {
	vm.space.align()
}

func (vm *VM) comma() {
	vm.space.compileCell(vm.sStack().pop())
}

func (vm *VM) compileComma() {
	vm.space.compileCell(vm.sStack().pop())
}

func (vm *VM) pBase() {
	vm.sStack().push(vm.space.sysAddr(sysBase))
}

func (vm *VM) toBody() {
	t := vm.sStack().pop()
	if t >= 0 && t < vm.wordlist.len() {
		vm.sStack().push(vm.wordlist.words[t].dfa)
	} else {
		vm.abortWith(ExcInvalidNumericArgument)
	}
}

// Return-stack vocabulary.

func (vm *VM) toR() {
	vm.rStack().push(vm.sStack().pop())
}

func (vm *VM) rFrom() {
	vm.sStack().push(vm.rStack().pop())
}

func (vm *VM) rFetch() {
	vm.sStack().push(vm.rStack().top())
}

func (vm *VM) twoToR() {
	n, t := vm.sStack().pop2()
	vm.rStack().push2(n, t)
}

func (vm *VM) twoRFrom() {
	n, t := vm.rStack().pop2()
	vm.sStack().push2(n, t)
}

func (vm *VM) twoRFetch() {
	r := vm.rStack()
	vm.sStack().push2(r.at(r.len()-2), r.at(r.len()-1))
}

// Error handling.

// checkStacks promotes a tripped canary fence into the matching
// exception. It runs between tokens and after every inner-loop return.
func (vm *VM) checkStacks() {
	switch {
	case vm.sStack().overflow():
		vm.abortWith(ExcStackOverflow)
	case vm.sStack().underflow():
		vm.abortWith(ExcStackUnderflow)
	case vm.rStack().overflow():
		vm.abortWith(ExcReturnStackOverflow)
	case vm.rStack().underflow():
		vm.abortWith(ExcReturnStackUnderflow)
	case vm.cStack().overflow(), vm.cStack().underflow():
		vm.abortWith(ExcControlStructureMismatch)
	case vm.fStack().overflow():
		vm.abortWith(ExcFloatingPointStackOverflow)
	case vm.fStack().underflow():
		vm.abortWith(ExcFloatingPointStackUnderflow)
	}
}

// abortWith clears the data, float, and control stacks, records the
// exception, and runs the installed handler word. The faulting thread
// is abandoned first, so a colon-definition handler runs to completion
// and then falls out to the host. The return stack is left alone;
// RESET clears that separately.
func (vm *VM) abortWith(e Exception) {
	vm.clearStacks()
	vm.lastError = e
	vm.logf("!", "abort: %v", e)
	vm.state().ip = 0
	vm.executeWord(vm.handler)
	vm.run()
}

func (vm *VM) abort() {
	vm.abortWith(ExcAbort)
}

func (vm *VM) clearStacks() {
	vm.sStack().reset()
	vm.fStack().reset()
	vm.cStack().reset()
}

func (vm *VM) handlerStore() {
	vm.handler = vm.sStack().pop()
}

func (vm *VM) pError() {
	vm.sStack().push(int(vm.lastError))
}

func (vm *VM) clearError() {
	vm.lastError = ExcNone
}

func (vm *VM) dotError() {
	if vm.lastError != ExcNone {
		vm.outbuf.WriteString(vm.lastError.Description())
	}
}

// reset clears the return stack, switches input back to the terminal
// source (source id 0), empties the input buffer, and returns to
// interpret state. Open file source frames are not closed here; the
// loader that opened them closes them when it stops reading. Stacks
// cleared by abort are not touched here.
func (vm *VM) reset() {
	vm.rStack().reset()
	vm.setSourceID(0)
	if buf := vm.inputBuffer(); buf != nil {
		*buf = ""
	}
	st := vm.state()
	st.sourceIdx = 0
	st.compiling = false
	vm.lastError = ExcNone
}

// Source identity.

func (vm *VM) pSourceID() {
	vm.sStack().push(vm.state().sourceID)
}

func (vm *VM) pSetSourceID() {
	vm.setSourceID(vm.sStack().pop())
}

func (vm *VM) setSourceID(id int) {
	t := vm.task()
	switch {
	case id == 0:
		vm.state().sourceID = 0
	case id > 0 && id-1 < len(t.sources) && t.sources[id-1] != nil:
		vm.state().sourceID = id
	default:
		vm.abortWith(ExcInvalidNumericArgument)
	}
}

func (vm *VM) pSourceIdx() {
	vm.sStack().push(vm.state().sourceIdx)
}

func (vm *VM) pSetSourceIdx() {
	vm.state().sourceIdx = vm.sStack().pop()
}
