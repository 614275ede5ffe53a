package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/rezkam/todos/tools/linters/slogkeys"
)

func main() {
	singlechecker.Main(slogkeys.Analyzer)
}
