// Package fifth implements a token-threaded, incrementally-compiled
// Forth-family virtual machine.
//
// The machine is a single VM aggregate passed to every primitive: a
// mutable dictionary of words hash-bucketed by case-insensitive name, a
// flat byte-addressed data space holding compiled threads alongside the
// system-variable header, and a fixed array of cooperative tasks, each
// with its own data, return, control-flow, and float stacks.
//
// Input is evaluated one token at a time by the outer interpreter:
// known words are executed or compiled according to interpreter state
// and their own compilation semantics, unknown tokens fall back to
// BASE-aware integer and then float parsing. Compiled definitions are
// threads of word indices executed by the inner interpreter, which
// dispatches each word's action until the instruction pointer leaves
// data space. Structured control flow (IF, BEGIN, DO, CASE families) is
// resolved at compile time against a tagged control stack.
//
// Faults never unwind the host stack: a primitive that detects one
// aborts with a standard Forth exception code, clearing stacks and
// running the installed handler word. Running out of data space, by
// contrast, is a host programming error and surfaces as a Go error at
// the API boundary.
package fifth
