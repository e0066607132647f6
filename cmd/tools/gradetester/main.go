// Command gradetester grades a saved transcript offline and renders the PDF
// report locally, without the browser or the voice provider.
//
// Usage:
//
//	gradetester personas
//	gradetester grade --persona ruby_customer --transcript call.txt [--audio rep.webm] [--duration 125s]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
