package fifth

import "math"

// Environment queries.

func (vm *VM) addEnvironment() {
	vm.addPrimitive("max-n", (*VM).maxN)
	vm.addPrimitive("max-u", (*VM).maxU)
}

// maxN pushes the largest usable signed integer.
func (vm *VM) maxN() {
	vm.sStack().push(math.MaxInt)
}

// maxU pushes the largest usable unsigned integer, which on the signed
// stack is the all-bits-set cell.
func (vm *VM) maxU() {
	u := ^uint(0)
	vm.sStack().push(int(u))
}
