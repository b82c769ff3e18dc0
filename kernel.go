package fifth

import "strings"

// The bootstrap kernel: derived words that are cleaner to express in
// the language itself than as Go primitives. It is evaluated through
// the regular loader at construction time, so a broken kernel fails
// loudly on the first New.
const kernelSource = `
\ boot kernel

: bl 32 ;
: space bl emit ;
: cr 10 emit ;
: spaces   begin dup 0> while space 1- repeat drop ;

: ? ( a-addr -- ) @ . ;
: +! ( n a-addr -- ) dup @ rot + swap ! ;
: ?dup ( x -- 0 | x x ) dup 0<> if dup then ;
: tuck ( x1 x2 -- x2 x1 x2 ) swap over ;

: min ( n1 n2 -- n3 ) 2dup > if swap then drop ;
: max ( n1 n2 -- n3 ) 2dup < if swap then drop ;

: 2! ( x1 x2 a-addr -- ) swap over ! cell+ ! ;
: 2@ ( a-addr -- x1 x2 ) dup cell+ @ swap @ ;
: 2variable   create 0 , 0 , ;
: 2constant   create , , does> dup cell+ @ swap @ ;

: decimal #10 base ! ;
: hex $10 base ! ;

\ delay n milliseconds, giving other awake tasks their turns
: ms ( n -- )
  1000 * utime drop +
  begin pause utime drop over swap < until drop ;
`

func (vm *VM) loadKernel() {
	vm.loadFrom(strings.NewReader(kernelSource), nil, "kernel")
	if vm.lastError != ExcNone {
		panic("boot kernel failed: " + vm.lastError.Error() + " at " + vm.token)
	}
}
