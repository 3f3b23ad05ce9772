// Command wplc drives the WPL compiler pipeline: lex, parse, analyze,
// emit, print. Grounded on the teacher's cmd/compiler/main.go (same
// stage order, same bare standard-library CLI surface — flag/os/fmt —
// since the teacher itself carries no CLI framework or logging
// library of its own).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wplc/compiler/internal/codegen"
	"github.com/wplc/compiler/internal/diag"
	"github.com/wplc/compiler/internal/parser"
	"github.com/wplc/compiler/internal/semantic"
)

func main() {
	emitIR := flag.Bool("emit-ir", true, "print the generated LLVM IR to stdout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: wplc [-emit-ir] <source-file>")
		os.Exit(2)
	}

	path := flag.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("wplc: %v", err)
	}

	os.Exit(run(path, string(src), *emitIR))
}

func run(path, src string, emitIR bool) int {
	p := parser.New(path, src)
	cu := p.ParseCompilationUnit()
	for _, perr := range p.Errors() {
		fmt.Fprintln(os.Stderr, perr)
	}
	if len(p.Errors()) > 0 {
		return 1
	}

	sink := diag.NewSink()
	analyzer := semantic.New(sink)
	analyzer.Analyze(cu)

	if sink.HasErrors() {
		reportDiagnostics(sink)
		return 1
	}

	emitter := codegen.New(path, analyzer.Bindings(), sink)
	defer emitter.Dispose()
	emitter.Emit(cu)

	if sink.HasErrors() {
		reportDiagnostics(sink)
		return 1
	}

	if emitIR {
		fmt.Println(emitter.Module().String())
	}
	return 0
}

func reportDiagnostics(sink *diag.Sink) {
	for _, d := range sink.ErrorList() {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", d.Pos, d.Kind, d.Message)
	}
}
