package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/orange-lang/orange/compiler/internal"
)

var (
	outPath = flag.String("o", "out.js", "the output script path")
	target  = flag.String("t", "js", "the target name recorded on the program root")
)

func main() {
	flag.Parse()
	fileNames := flag.Args()
	if len(fileNames) == 0 {
		fmt.Fprintf(os.Stderr, "usage: compile [-o OUTFILE] [-t TARGET] FILE...\n")
		os.Exit(1)
	}
	comp, err := internal.CompileToFile(fileNames, *outPath, *target)
	if err != nil {
		if comp != nil {
			fmt.Fprintln(os.Stderr, comp.FormatError(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
