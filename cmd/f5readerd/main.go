// f5readerd serves a parsed F5 BigIP configuration dump over an HTTP
// REST API with Prometheus metrics, optionally reloading when the dump
// changes on disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/veepee-oss/f5-reader/pkg/daemon"
)

func main() {
	configFile := flag.String("config", "/etc/f5reader/bigip.conf", "configuration dump path")
	apiAddr := flag.String("api-addr", "127.0.0.1:8443", "HTTP API listen address")
	apiToken := flag.String("api-token", "", "API token (empty disables authentication)")
	watch := flag.Bool("watch", false, "reload when the dump changes on disk")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// Set up structured logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	d := daemon.New(daemon.Options{
		ConfigFile: *configFile,
		APIAddr:    *apiAddr,
		APIToken:   *apiToken,
		Watch:      *watch,
	})

	if err := d.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "f5readerd: %v\n", err)
		os.Exit(1)
	}
}
