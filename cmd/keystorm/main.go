// Command keystorm is a modal text editor with multi-pane splits and
// embedded terminal panes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dshills/keystorm/internal/app"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: per-user config dir)")
	logPath := flag.String("log", "", "write logs to this file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	application, err := app.New(app.Options{
		Files:      flag.Args(),
		ConfigPath: *configPath,
		LogPath:    *logPath,
		LogLevel:   *logLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "keystorm: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "keystorm: %v\n", err)
		os.Exit(1)
	}
}
