package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/canvasproto/internal/codegen"
	"github.com/danmuck/canvasproto/internal/config"
	"github.com/danmuck/canvasproto/internal/logging"
	"github.com/danmuck/canvasproto/internal/observability"
	"github.com/danmuck/canvasproto/internal/toolchain"
)

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:], os.Stdout, toolchain.ExecRunner{}); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "protogen: %v\n", err)
		os.Exit(1)
	}
}

// run exits non-zero only for usage, configuration and output I/O errors.
// Every generation outcome, degraded or not, is a success.
func run(args []string, stdout io.Writer, runner toolchain.CommandRunner) error {
	fs := flag.NewFlagSet("protogen", flag.ContinueOnError)
	path := fs.String("config", config.DefaultPath, "generator config path")
	force := fs.Bool("force", false, "regenerate even when the stamp says outputs are current (with -init: overwrite the config)")
	initConfig := fs.Bool("init", false, "write a config template and exit")
	validate := fs.Bool("validate", false, "validate the config and exit")
	metricsFile := fs.String("metrics-textfile", "", "write run metrics in Prometheus text format to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *initConfig {
		if err := config.WriteTemplate(*path, *force); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote config template to %s\n", *path)
		return nil
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	if *validate {
		fmt.Fprintf(stdout, "validated config at %s\n", *path)
		return nil
	}

	report, err := codegen.New(cfg, codegen.WithRunner(runner)).Run(*force)
	if err != nil {
		return err
	}
	for _, res := range report.Results {
		status := res.Outcome.String()
		switch {
		case res.Skipped:
			status += " (up to date)"
		case !res.Written:
			status += " (unchanged)"
		}
		fmt.Fprintf(stdout, "%-8s %-24s %s\n", res.Target, status, res.Output)
	}
	if report.Degraded() {
		logging.Warnf("protogen: run %s produced reduced-fidelity output; rerun once protoc is available", report.RunID)
	}
	if report.WireMismatch() {
		native, _ := report.Result(codegen.TargetNative)
		browser, _ := report.Result(codegen.TargetBrowser)
		logging.Warnf("protogen: native output is %s but browser output is %s; the two cannot exchange messages", native.Outcome, browser.Outcome)
		fmt.Fprintf(stdout, "warning: native (%s) and browser (%s) outputs are wire-incompatible\n", native.Outcome, browser.Outcome)
	}
	if *metricsFile != "" {
		return observability.WriteTextfile(*metricsFile)
	}
	return nil
}
