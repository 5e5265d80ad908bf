package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/gochamp/internal/adapters/remote"
	service "github.com/okian/gochamp/internal/app"
	"github.com/okian/gochamp/internal/config"
	"github.com/okian/gochamp/pkg/logger"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// cli carries the persistent flags and the clients built from them.
type cli struct {
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	api      string
	timeout  time.Duration
	output   string
	logLevel string

	cfg    *config.Config
	client *remote.Client
	svc    *service.Service
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "gochamp",
		Short: "Command-line client for the GoChamp assessment service",
		Long: `gochamp calls the sports talent assessment service: log in, list athletes,
upload videos for assessment and inspect results.

Settings come from defaults, then the YAML file named by GOCHAMP_CONFIG, then
GOCHAMP_* environment variables, then flags.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.api, "api", "", "service base URL (overrides base_url)")
	flags.DurationVar(&c.timeout, "timeout", 0, "per-request timeout (overrides request_timeout_ms)")
	flags.StringVarP(&c.output, "output", "o", outputTable, "output format: table, json or yaml")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		c.loginCmd(),
		c.athletesCmd(),
		c.uploadCmd(),
		c.leaderboardCmd(),
		c.latestCmd(),
		c.reportCmd(),
		c.otpCmd(),
		c.verifyTokenCmd(),
		c.smokeCmd(),
		c.versionCmd(),
	)
	return root
}

// setup loads config, applies flag overrides and builds the client.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	switch c.output {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q", c.output)
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if c.api != "" {
		cfg.BaseURL = c.api
	}
	if c.timeout > 0 {
		cfg.RequestTimeoutMS = int(c.timeout / time.Millisecond)
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	c.cfg = cfg

	if err := logger.Init(logger.WithWriter(c.errOut), logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}

	client, err := remote.New(cfg.BaseURL,
		remote.WithTimeout(cfg.RequestTimeout()),
		remote.WithUserAgent(cfg.UserAgent),
		remote.WithLogger(logger.Get()),
	)
	if err != nil {
		return err
	}
	c.client = client
	c.svc = service.New(client, service.WithLogger(logger.Get()))
	return nil
}
