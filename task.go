package fifth

// Cooperative multitasking. Only one task runs at a time on the host
// thread; PAUSE is the sole suspension point, rotating to the next
// awake task. Because the inner interpreter re-resolves task state on
// every step, switching the current task index here is all a context
// switch takes.

// pause rotates to the next awake task.
func (vm *VM) pause() {
	i := vm.current
	for {
		i = (i + 1) % NumTasks
		if vm.awake(i) {
			vm.current = i
			break
		}
	}
}

// activate wakes task i, resets it, and hands it the code following
// the ACTIVATE in the calling definition; the caller itself returns
// immediately to whoever called it.
func (vm *VM) activate() {
	i := vm.sStack().pop() - 1
	if i < 0 || i >= NumTasks {
		vm.state().ip = vm.rStack().pop()
		vm.abortWith(ExcInvalidNumericArgument)
		return
	}
	vm.setAwake(i, true)
	caller := vm.current
	ip := vm.state().ip
	vm.current = i
	vm.reset()
	vm.clearStacks()
	vm.state().ip = ip
	vm.current = caller
	vm.state().ip = vm.rStack().pop()
}

// me pushes the current task's 1-based id.
func (vm *VM) me() {
	vm.sStack().push(vm.current + 1)
}

// suspend puts task i to sleep.
func (vm *VM) suspend() {
	i := vm.sStack().pop() - 1
	if i >= 0 && i < NumTasks {
		vm.setAwake(i, false)
	} else {
		vm.abortWith(ExcInvalidNumericArgument)
	}
}

// resume wakes task i.
func (vm *VM) resume() {
	i := vm.sStack().pop() - 1
	if i >= 0 && i < NumTasks {
		vm.setAwake(i, true)
	} else {
		vm.abortWith(ExcInvalidNumericArgument)
	}
}
