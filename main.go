package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/qa-tooling/user-api-contract-tests/client"
	"github.com/qa-tooling/user-api-contract-tests/config"
	"github.com/qa-tooling/user-api-contract-tests/fakeapi"
	"github.com/qa-tooling/user-api-contract-tests/framework"
	"github.com/qa-tooling/user-api-contract-tests/logging"
	"github.com/qa-tooling/user-api-contract-tests/usertests"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	exitTestsFailed = 1
	exitSetupFailed = 2

	defaultFakeAPIPort = 8000
)

// exitError carries the process exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return "exit status " + strconv.Itoa(e.code)
	}
	return e.err.Error()
}

func setupError(err error) error {
	return &exitError{code: exitSetupFailed, err: err}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.err != nil {
				fmt.Fprintln(os.Stderr, exit.err)
			}
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitSetupFailed)
	}
}

func newRootCmd() *cobra.Command {
	var params commandParams
	cmd := &cobra.Command{
		Use:           programName,
		Short:         "Run contract tests against a user management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(&params)
		},
	}
	params.bindFlags(cmd)
	cmd.AddCommand(newFakeAPICmd())
	return cmd
}

func run(params *commandParams) error {
	cfg, err := config.Load(params.envFiles)
	if err != nil {
		return setupError(err)
	}
	params.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return setupError(err)
	}

	logger := logging.New(cfg.LogLevel, nil)
	logger.WithField("command", params.reproduction(cfg)).Info("Starting test run")

	catalogue, err := usertests.LoadCatalogue(cfg.BugCatalogue)
	if err != nil {
		return setupError(err)
	}

	harness, err := framework.NewTestHarness(
		cfg.Target.BaseURL,
		cfg.Target.StatusQueryTimeout,
		logging.Component(logger, "harness"),
		os.Stdout,
	)
	if err != nil {
		return setupError(errors.Wrap(err, "API under test is not available"))
	}
	logger.WithField("version", harness.ServiceInfo().Version).Info("Connected to API under test")

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters, catalogue.BugIDs())

	fmt.Println("Running test suite")
	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	apiClient := client.New(cfg.Target.BaseURL, cfg.Target.RequestTimeout, nil)

	startedAt := time.Now()
	results := usertests.RunTestSuite(harness, apiClient, catalogue, cfg, params.filters.AsFilter, testLogger)
	finishedAt := time.Now()

	fmt.Println()
	PrintResults(os.Stdout, results)

	if cfg.ReportPath != "" {
		report := framework.NewRunReport(results, harness, startedAt, finishedAt)
		if err := report.WriteFile(cfg.ReportPath); err != nil {
			logger.WithError(err).Error("Could not write run report")
		} else {
			logger.WithField("path", cfg.ReportPath).Info("Wrote run report")
		}
	}

	if !results.OK() {
		return &exitError{code: exitTestsFailed}
	}
	return nil
}

func newFakeAPICmd() *cobra.Command {
	var (
		port      int
		rateLimit string
		logLevel  string
	)
	cmd := &cobra.Command{
		Use:   "fakeapi",
		Short: "Serve an in-memory user management API that reproduces the tracked bugs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.New(logLevel, nil)
			server, err := fakeapi.New(fakeapi.Options{RateLimit: rateLimit, Logger: logger})
			if err != nil {
				return setupError(err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return fakeapi.ListenAndServe(ctx, ":"+strconv.Itoa(port), server)
		},
	}
	cmd.Flags().IntVar(&port, "port", defaultFakeAPIPort, "port to listen on")
	cmd.Flags().StringVar(&rateLimit, "rate-limit", fakeapi.DefaultRateLimit, "create-user limit per client address, e.g. 100-M")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "silent, error, warn, info or debug")
	return cmd
}
