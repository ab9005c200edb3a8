// Command nk is a terminal client for the notes service.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	root := newRootCmd(version, buildDate)
	if err := root.Execute(); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "nk:", err)
	os.Exit(1)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
