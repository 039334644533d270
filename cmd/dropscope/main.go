package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/dropscope/internal/cli"
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	err := cli.NewRootCommand().ExecuteContext(context.Background())
	if err == nil {
		os.Exit(cli.ExitSuccess)
	}

	// Commands report their own failures as *ExitError.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
