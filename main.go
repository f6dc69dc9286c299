// Command pagesift fetches a list of web pages concurrently, validates they
// are alive and serving real content, extracts title/paragraph records, and
// writes the combined dataset as CSV.
package main

import (
	"fmt"
	"os"

	"github.com/tmacri/pagesift/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pagesift: %v\n", err)
		os.Exit(1)
	}
}
