// Package main is the entry point for the tasktrack CLI.
package main

import (
	"os"

	"github.com/leeovery/tasktrack/internal/cli"
)

func main() {
	app := &cli.App{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Cwd:    ".",
		Getenv: os.Getenv,
	}

	if wd, err := os.Getwd(); err == nil {
		app.Cwd = wd
	}
	if dir, err := os.UserConfigDir(); err == nil {
		app.UserConfigDir = dir
	}

	os.Exit(app.Run(os.Args))
}
