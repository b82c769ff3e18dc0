package fifth

import "math"

// Floating-point words. Floats live on the per-task F stack; FVARIABLE
// storage sits float-aligned in data space.

func (vm *VM) addFloat() {
	vm.addPrimitive("fconstant", (*VM).fConstant)
	vm.addPrimitive("fvariable", (*VM).fVariable)
	vm.addPrimitive("f!", (*VM).fStore)
	vm.addPrimitive("f@", (*VM).fFetch)
	vm.addPrimitive("fabs", (*VM).fAbs)
	vm.addPrimitive("fsin", (*VM).fSin)
	vm.addPrimitive("fcos", (*VM).fCos)
	vm.addPrimitive("ftan", (*VM).fTan)
	vm.addPrimitive("fasin", (*VM).fAsin)
	vm.addPrimitive("facos", (*VM).fAcos)
	vm.addPrimitive("fatan", (*VM).fAtan)
	vm.addPrimitive("fatan2", (*VM).fAtan2)
	vm.addPrimitive("fsqrt", (*VM).fSqrt)
	vm.addPrimitive("fdrop", (*VM).fDrop)
	vm.addPrimitive("fdup", (*VM).fDup)
	vm.addPrimitive("fswap", (*VM).fSwap)
	vm.addPrimitive("fnip", (*VM).fNip)
	vm.addPrimitive("frot", (*VM).fRot)
	vm.addPrimitive("fover", (*VM).fOver)
	vm.addPrimitive("n>f", (*VM).nToF)
	vm.addPrimitive("f>n", (*VM).fToN)
	vm.addPrimitive("f+", (*VM).fPlus)
	vm.addPrimitive("f-", (*VM).fMinus)
	vm.addPrimitive("f*", (*VM).fStar)
	vm.addPrimitive("f/", (*VM).fSlash)
	vm.addPrimitive("f~", (*VM).fProximate)
	vm.addPrimitive("f0<", (*VM).fZeroLess)
	vm.addPrimitive("f0=", (*VM).fZeroEquals)
	vm.addPrimitive("f<", (*VM).fLess)
	vm.addPrimitive("fmin", (*VM).fMin)
	vm.addPrimitive("fmax", (*VM).fMax)
	vm.addPrimitive("floor", (*VM).fFloor)
	vm.addPrimitive("fround", (*VM).fRound)
	vm.addPrimitive("fceil", (*VM).fCeil)
	vm.addPrimitive("fnegate", (*VM).fNegate)
}

// pFConst is the action of FCONSTANT words: push the float stored at
// the data field.
func (vm *VM) pFConst() {
	dfa := vm.wordlist.words[vm.state().wp].dfa
	vm.fStack().push(vm.space.getFloat(dfa))
}

func (vm *VM) fConstant() {
	f := vm.fStack().pop()
	vm.define((*VM).pFConst, (*VM).compileFConst)
	if vm.lastError != ExcNone {
		return
	}
	vm.space.alignFloat()
	vm.wordlist.words[vm.wordlist.last].dfa = vm.space.here()
	vm.space.compileFloat(f)
}

func (vm *VM) fVariable() {
	vm.define((*VM).pVar, (*VM).compileVar)
	if vm.lastError != ExcNone {
		return
	}
	vm.space.alignFloat()
	vm.wordlist.words[vm.wordlist.last].dfa = vm.space.here()
	vm.space.compileFloat(0)
}

func (vm *VM) fFetch() {
	addr := vm.sStack().pop()
	if vm.space.start() < addr && addr+floatSize <= vm.space.limit() {
		vm.fStack().push(vm.space.getFloat(addr))
	} else {
		vm.abortWith(ExcInvalidMemoryAddress)
	}
}

func (vm *VM) fStore() {
	addr := vm.sStack().pop()
	f := vm.fStack().pop()
	if vm.space.start() < addr && addr+floatSize <= vm.space.limit() {
		vm.space.putFloat(addr, f)
	} else {
		vm.abortWith(ExcInvalidMemoryAddress)
	}
}

func (vm *VM) fDrop() { vm.fStack().depth-- }

func (vm *VM) fDup() {
	f := vm.fStack()
	f.depth++
	f.inner[f.depth-1] = f.inner[f.depth-2]
}

func (vm *VM) fSwap() {
	f := vm.fStack()
	f.inner[f.depth-1], f.inner[f.depth-2] = f.inner[f.depth-2], f.inner[f.depth-1]
}

func (vm *VM) fNip() {
	f := vm.fStack()
	f.inner[f.depth-2] = f.inner[f.depth-1]
	f.depth--
}

func (vm *VM) fRot() {
	f := vm.fStack()
	t, n := f.inner[f.depth-1], f.inner[f.depth-2]
	f.inner[f.depth-1] = f.inner[f.depth-3]
	f.inner[f.depth-2] = t
	f.inner[f.depth-3] = n
}

func (vm *VM) fOver() {
	f := vm.fStack()
	f.depth++
	f.inner[f.depth-1] = f.inner[f.depth-3]
}

func (vm *VM) nToF() {
	vm.fStack().push(float64(vm.sStack().pop()))
}

func (vm *VM) fToN() {
	vm.sStack().push(int(vm.fStack().pop()))
}

func (vm *VM) fPlus() {
	n, t := vm.fStack().pop2()
	vm.fStack().push(n + t)
}

func (vm *VM) fMinus() {
	n, t := vm.fStack().pop2()
	vm.fStack().push(n - t)
}

func (vm *VM) fStar() {
	n, t := vm.fStack().pop2()
	vm.fStack().push(n * t)
}

func (vm *VM) fSlash() {
	n, t := vm.fStack().pop2()
	vm.fStack().push(n / t)
}

// fProximate is F~: exact match for f3 = 0, absolute tolerance for
// f3 > 0, relative tolerance for f3 < 0.
func (vm *VM) fProximate() {
	f1, f2, f3 := vm.fStack().pop3()
	var near bool
	switch {
	case f3 > 0:
		near = math.Abs(f1-f2) < f3
	case f3 == 0:
		near = f1 == f2
	default:
		near = math.Abs(f1-f2) < math.Abs(f3)*(math.Abs(f1)+math.Abs(f2))
	}
	vm.sStack().push(boolFlag(near))
}

func (vm *VM) fZeroLess() {
	vm.sStack().push(boolFlag(vm.fStack().pop() < 0))
}

func (vm *VM) fZeroEquals() {
	vm.sStack().push(boolFlag(vm.fStack().pop() == 0))
}

func (vm *VM) fLess() {
	n, t := vm.fStack().pop2()
	vm.sStack().push(boolFlag(n < t))
}

func (vm *VM) fMin() {
	n, t := vm.fStack().pop2()
	vm.fStack().push(math.Min(n, t))
}

func (vm *VM) fMax() {
	n, t := vm.fStack().pop2()
	vm.fStack().push(math.Max(n, t))
}

func (vm *VM) fAbs() { vm.fStack().push(math.Abs(vm.fStack().pop())) }

func (vm *VM) fSin() { vm.fStack().push(math.Sin(vm.fStack().pop())) }

func (vm *VM) fCos() { vm.fStack().push(math.Cos(vm.fStack().pop())) }

func (vm *VM) fTan() { vm.fStack().push(math.Tan(vm.fStack().pop())) }

func (vm *VM) fAsin() { vm.fStack().push(math.Asin(vm.fStack().pop())) }

func (vm *VM) fAcos() { vm.fStack().push(math.Acos(vm.fStack().pop())) }

func (vm *VM) fAtan() { vm.fStack().push(math.Atan(vm.fStack().pop())) }

func (vm *VM) fAtan2() {
	n, t := vm.fStack().pop2()
	vm.fStack().push(math.Atan2(n, t))
}

func (vm *VM) fSqrt() { vm.fStack().push(math.Sqrt(vm.fStack().pop())) }

func (vm *VM) fFloor() { vm.fStack().push(math.Floor(vm.fStack().pop())) }

func (vm *VM) fRound() { vm.fStack().push(math.Round(vm.fStack().pop())) }

func (vm *VM) fCeil() { vm.fStack().push(math.Ceil(vm.fStack().pop())) }

func (vm *VM) fNegate() { vm.fStack().push(-vm.fStack().pop()) }
