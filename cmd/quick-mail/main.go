// Command quick-mail validates recipient lists and sends mail as the
// configured user. It also serves the same checks over an HTTP API.
//
// Usage:
//
//	quick-mail validate user@example.com --dns
//	quick-mail filter "a@example.com, b@example.com" --legacy
//	quick-mail send --to "a@example.com" --subject "Hi" --body-file message.txt --attach report.pdf
//	quick-mail serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
