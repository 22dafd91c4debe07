package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/insight/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	serviceURL := flag.String("service", "", "analysis service base URL (optional, overrides service_url)")
	timeout := flag.Duration("timeout", 0, "request timeout (optional, overrides request_timeout)")
	target := flag.String("url", "", "analyze this URL once without the TUI")
	asJSON := flag.Bool("json", false, "with -url, print the result as JSON")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		ServiceURL: *serviceURL,
		URL:        *target,
		JSON:       *asJSON,
	}
	if d := *timeout; d > 0 {
		opts.Timeout = d
	} else if d < 0 {
		fmt.Fprintf(os.Stderr, "insight: -timeout must be positive, got %s\n", d)
		return 1
	}

	if flagSet("url") {
		return app.Analyze(ctx, opts)
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "insight: %v\n", err)
		return 1
	}
	return 0
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
