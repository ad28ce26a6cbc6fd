package main

import (
	"os"

	"github.com/a1utilityhub/prompt-relay/cmd"
	"github.com/a1utilityhub/prompt-relay/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
