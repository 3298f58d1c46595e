package cli

import (
	"crypto/sha256"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/xhttp/client"
)

func newQueryCmd(g *globals) *cobra.Command {
	var (
		follow   bool
		headers  map[string]string
		params   map[string]string
		body     string
		user     string
		password string
		cookies  bool
	)

	cmd := &cobra.Command{
		Use:   "query METHOD URL",
		Short: "Issue a GET, POST, PUT, DELETE or HEAD call",
		Long: `Issue a single call. Params are sent URL-form-encoded and a body
given with --data replaces them; only POST and PUT carry either.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []client.CallOption{client.WithHeaders(headers)}
			if cmd.Flags().Changed("param") {
				opts = append(opts, client.WithParams(params))
			}
			if cmd.Flags().Changed("data") {
				opts = append(opts, client.WithBody(body))
			}
			if user != "" {
				opts = append(opts, client.WithBasicAuth(user, password))
			}
			if cookies {
				jar, err := client.NewCookieJar()
				if err != nil {
					return err
				}
				opts = append(opts, client.WithCookieJar(jar))
			}

			method := client.Method(strings.ToUpper(args[0]))
			res := g.client.Query(cmd.Context(), method, args[1], follow, opts...)

			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVar(&follow, "follow", false, "Follow redirects")
	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "Request header as key=value (repeatable)")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "Form parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&body, "data", "d", "", "Raw request body")
	cmd.Flags().StringVar(&user, "user", "", "Basic auth user name")
	cmd.Flags().StringVar(&password, "password", "", "Basic auth password")
	cmd.Flags().BoolVar(&cookies, "cookies", false, "Keep cookies across redirects")

	return cmd
}

func newFetchCmd(g *globals) *cobra.Command {
	var (
		hardTimeout time.Duration
		lazy        bool
	)

	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "GET a URL under a hard wall-clock timeout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := g.client.QueryWithTimeout(cmd.Context(), args[0], hardTimeout, lazy)
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().DurationVar(&hardTimeout, "hard-timeout", 10*time.Second, "Abort the call after this long")
	cmd.Flags().BoolVar(&lazy, "lazy", true, "Read the body and headers; false records the status only")

	return cmd
}

func newDownloadCmd(g *globals) *cobra.Command {
	var (
		progress     bool
		skipExisting bool
		checksum     string
	)

	cmd := &cobra.Command{
		Use:   "download URL DEST",
		Short: "Stream a response body into a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []client.DownloadOption
			if progress {
				opts = append(opts, client.WithProgress())
			}
			if skipExisting {
				opts = append(opts, client.WithSkipExisting())
			}
			if checksum != "" {
				opts = append(opts, client.WithChecksum(sha256.New(), strings.ToLower(checksum)))
			}

			res := g.client.Download(cmd.Context(), args[0], args[1], opts...)
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVar(&progress, "progress", false, "Log download progress")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Do nothing when DEST exists")
	cmd.Flags().StringVar(&checksum, "sha256", "", "Expected hex SHA-256 of the body")

	return cmd
}

func newPostCmd(g *globals) *cobra.Command {
	var (
		headers map[string]string
		params  map[string]string
		body    string
	)

	cmd := &cobra.Command{
		Use:   "post URL",
		Short: "POST a raw body or form params",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataSet, paramSet := cmd.Flags().Changed("data"), cmd.Flags().Changed("param")
			if dataSet == paramSet {
				return errors.New("exactly one of --data or --param is required")
			}

			var res client.Result
			if dataSet {
				res = g.client.Post(cmd.Context(), args[0], headers, body)
			} else {
				res = g.client.PostForm(cmd.Context(), args[0], headers, params)
			}

			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "Request header as key=value (repeatable)")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "Form parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&body, "data", "d", "", "Raw request body")

	return cmd
}

func newUploadCmd(g *globals) *cobra.Command {
	var (
		headers map[string]string
		params  map[string]string
	)

	cmd := &cobra.Command{
		Use:   "upload URL FILE",
		Short: "POST form params for an upload endpoint",
		Long: `POST headers and form params to URL without following redirects.
FILE is recorded in the logs but its content is not sent.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := g.client.Upload(cmd.Context(), args[0], headers, params, args[1])
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "Request header as key=value (repeatable)")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "Form parameter as key=value (repeatable)")

	return cmd
}
