package main

import (
	"strings"

	"github.com/qa-tooling/user-api-contract-tests/config"
	"github.com/qa-tooling/user-api-contract-tests/framework"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"
)

const programName = "user-api-contract-tests"

// commandParams are the command-line options. Any that are set override the corresponding
// environment variables.
type commandParams struct {
	serviceURL    string
	filters       framework.RegexFilters
	debug         bool
	debugAll      bool
	reportPath    string
	cataloguePath string
	logLevel      string
	envFiles      []string
}

func (c *commandParams) bindFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&c.serviceURL, "url", "", "base URL of the API under test (overrides API_BASE_URL)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.reportPath, "report", "", "write a JSON run report to this path (overrides REPORT_PATH)")
	fs.StringVar(&c.cataloguePath, "catalogue", "", "tracked-bug catalogue to use instead of the built-in one (overrides BUG_CATALOGUE)")
	fs.StringVar(&c.logLevel, "log-level", "", "silent, error, warn, info or debug (overrides LOG_LEVEL)")
	fs.StringSliceVar(&c.envFiles, "env-file", config.DefaultEnvFiles, "dotenv files to load if they exist")
}

// apply layers the command-line options over the configuration read from the environment.
func (c *commandParams) apply(cfg *config.Configuration) {
	if c.serviceURL != "" {
		cfg.Target.BaseURL = c.serviceURL
	}
	if c.reportPath != "" {
		cfg.ReportPath = c.reportPath
	}
	if c.cataloguePath != "" {
		cfg.BugCatalogue = c.cataloguePath
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.debugAll {
		cfg.LogLevel = "debug"
	}
}

// reproduction returns a command line that runs the same tests against the same target.
func (c *commandParams) reproduction(cfg *config.Configuration) string {
	var b commandBuilder
	b.add(programName, "--url", cfg.Target.BaseURL)
	for _, p := range c.filters.MustMatch.Patterns() {
		b.add("--run", p)
	}
	for _, p := range c.filters.MustNotMatch.Patterns() {
		b.add("--skip", p)
	}
	if cfg.BugCatalogue != "" {
		b.add("--catalogue", cfg.BugCatalogue)
	}
	if c.debugAll {
		b.add("--debug-all")
	} else if c.debug {
		b.add("--debug")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
