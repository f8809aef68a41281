package main

import (
	"os"

	"github.com/op/go-logging"

	"github.com/shini4i/scratchdir/cmd/scratchdir/command"
	"github.com/shini4i/scratchdir/internal/helpers"
)

var version = "local"

func main() {
	opts := command.Options{
		Version:     version,
		BaseDir:     helpers.GetEnv("SCRATCHDIR_BASE", ""),
		ConfigPath:  helpers.GetEnv("SCRATCHDIR_CONFIG", ""),
		InitLogging: initLogging,
	}

	if err := command.Execute(opts, nil); err != nil {
		os.Exit(1)
	}
}

// initLogging configures the go-logging backend according to the debug flag.
func initLogging(debug bool) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(`%{level:.4s} %{message}`))

	leveled := logging.AddModuleLevel(formatted)
	if debug {
		leveled.SetLevel(logging.DEBUG, "")
	} else {
		leveled.SetLevel(logging.INFO, "")
	}

	logging.SetBackend(leveled)
}
