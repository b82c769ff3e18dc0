package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	getopt "github.com/pborman/getopt/v2"
	"github.com/peterh/liner"

	fifth "github.com/fifthvm/fifth"
	"github.com/fifthvm/fifth/internal/logio"
)

const version = "fifth v0.1.0"

func main() {
	optEval := getopt.StringLong("eval", 'e', "", "Evaluate an expression and exit")
	optLog := getopt.StringLong("log", 'l', "", "Trace log file")
	optDump := getopt.BoolLong("dump", 'd', "Dump the VM after loading")
	optVersion := getopt.BoolLong("version", 'v', "Print version")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.SetParameters("[files]")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		return
	}
	if *optVersion {
		fmt.Println(version)
		return
	}

	programLevel := new(slog.LevelVar)
	logOut := io.Writer(os.Stderr)
	var opts []fifth.Option
	if *optLog != "" {
		file, err := os.Create(*optLog)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create log file:", err)
			os.Exit(1)
		}
		defer file.Close()
		logOut = file
		programLevel.Set(slog.LevelDebug)
		logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: programLevel}))
		opts = append(opts, fifth.WithLogf(func(mess string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(mess, args...))
		}))
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: programLevel}))
	slog.SetDefault(logger)

	vm := fifth.New(append(opts, fifth.WithOutput(os.Stdout))...)
	defer vm.Close()

	for _, file := range getopt.Args() {
		if err := vm.Load(file); err != nil {
			vm.Flush()
			fmt.Fprintf(os.Stderr, "\n%v: %v\n", file, err)
			vm.Reset()
			os.Exit(1)
		}
	}
	vm.Flush()

	if *optDump {
		vm.Dump(&logio.Writer{Logf: func(mess string, args ...interface{}) {
			slog.Info(fmt.Sprintf(mess, args...))
		}})
	}

	if *optEval != "" {
		if err := vm.Interpret(*optEval); err != nil {
			vm.Flush()
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		vm.Flush()
		fmt.Println()
		return
	}

	fmt.Println(version)
	fmt.Println("Type 'bye' or press Ctrl-D to exit.")
	repl(vm)
}

func repl(vm *fifth.VM) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		i := strings.LastIndexAny(input, " \t")
		head, tail := input[:i+1], strings.ToLower(input[i+1:])
		if tail == "" {
			return nil
		}
		var out []string
		for _, w := range vm.Words() {
			if strings.HasPrefix(strings.ToLower(w), tail) {
				out = append(out, head+w)
			}
		}
		return out
	})

	for {
		input, err := line.Prompt("fifth> ")
		if err == nil {
			line.AppendHistory(input)
			if strings.EqualFold(strings.TrimSpace(input), "bye") {
				return
			}
			if ierr := vm.Interpret(input); ierr != nil {
				vm.Flush()
				fmt.Println(" ?", ierr)
				vm.Reset()
			} else {
				vm.Flush()
				fmt.Println(" ok")
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println("aborted")
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return
		}
		slog.Error("error reading line: " + err.Error())
		return
	}
}
