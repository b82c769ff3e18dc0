package fifth

import "time"

// Facility words: wall-clock time since the VM was constructed. The
// pause-aware MS delay is built on these in the kernel, so the wait
// itself is a thread the multitasker can rotate out of.

func (vm *VM) addFacility() {
	vm.addPrimitive("ntime", (*VM).nTime)
	vm.addPrimitive("utime", (*VM).uTime)
}

func (vm *VM) pushDouble(t uint64) {
	vm.sStack().push2(int(t&uint64(^uint(0))), int(t>>(cellSize*8-1)>>1))
}

// nTime pushes the nanoseconds since VM start as a double cell.
func (vm *VM) nTime() {
	vm.pushDouble(uint64(time.Since(vm.epoch).Nanoseconds()))
}

// uTime pushes the microseconds since VM start as a double cell.
func (vm *VM) uTime() {
	vm.pushDouble(uint64(time.Since(vm.epoch).Microseconds()))
}
