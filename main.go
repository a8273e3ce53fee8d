package main

import (
	"fmt"
	"os"

	"github.com/Caleb-Mok/TS-Blood-Test-Analyser/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
