// Package main provides wn, which orders tasks by least laxity and checks
// whether their deadlines can be met.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/calvinalkan/whatnext/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env, time.Now(), sigCh)

	os.Exit(exitCode)
}
