// Command gen_expects regenerates the golden .expect files next to the
// testdata/*.fs scenario sources. Each scenario runs in its own VM, so
// they regenerate concurrently.
//
// Usage (from the repository root):
//
//	go run ./scripts
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	fifth "github.com/fifthvm/fifth"
)

func main() {
	files, err := filepath.Glob("testdata/*.fs")
	if err != nil {
		log.Fatal(err)
	}
	if len(files) == 0 {
		log.Fatal("no testdata/*.fs files; run from the repository root")
	}

	var group errgroup.Group
	for _, file := range files {
		file := file
		group.Go(func() error {
			var buf bytes.Buffer
			vm := fifth.New(fifth.WithOutput(&buf))
			if err := vm.Load(file); err != nil {
				return fmt.Errorf("%v: %w", file, err)
			}
			if err := vm.Flush(); err != nil {
				return fmt.Errorf("%v: %w", file, err)
			}
			expect := strings.TrimSuffix(file, ".fs") + ".expect"
			return os.WriteFile(expect, buf.Bytes(), 0o644)
		})
	}
	if err := group.Wait(); err != nil {
		log.Fatal(err)
	}
}
