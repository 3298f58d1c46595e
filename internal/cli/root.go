// Package cli implements the xhttp command line.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/xhttp/client"
	"github.com/adamwoolhether/xhttp/config"
)

// ErrCallFailed is returned by commands whose call produced a Result
// carrying an error. The Result itself has already been printed.
var ErrCallFailed = errors.New("call failed")

type globals struct {
	configFile string
	envFile    string
	logLevel   string
	userAgent  string

	client *client.Client
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	var g globals

	cmd := &cobra.Command{
		Use:   "xhttp",
		Short: "xhttp - best-effort synchronous HTTP calls",
		Long: `xhttp issues a single HTTP call and prints its result as JSON.

Failed calls still print a result, carrying the configured default
status code and the error, and exit with status 1.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.build(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&g.configFile, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&g.envFile, "env-file", "", "Path to a .env file with XHTTP_* variables")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&g.userAgent, "user-agent", "", "User-Agent header sent with every request")

	cmd.AddCommand(
		newQueryCmd(&g),
		newFetchCmd(&g),
		newDownloadCmd(&g),
		newPostCmd(&g),
		newUploadCmd(&g),
	)

	return cmd
}

func (g *globals) build(logOut io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	var loadOpts []config.Option
	if g.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(g.configFile))
	}
	if g.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(g.envFile))
	}

	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	c, err := client.Build(cfg, client.WithLogger(logger), client.WithUserAgent(g.userAgent))
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}
	g.client = c

	return nil
}

// output is the JSON form of a client.Result.
type output struct {
	StatusCode int         `json:"status_code"`
	Body       string      `json:"body,omitempty"`
	Headers    http.Header `json:"headers,omitempty"`
	Kind       string      `json:"kind,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func printResult(w io.Writer, res client.Result) error {
	out := output{
		StatusCode: res.StatusCode,
		Body:       res.Body,
		Headers:    res.Headers,
	}
	if res.Err != nil {
		out.Kind = client.KindOf(res.Err).String()
		out.Error = res.Err.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	if res.Err != nil {
		return ErrCallFailed
	}

	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		if !errors.Is(err, ErrCallFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
