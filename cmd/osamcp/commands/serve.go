package commands

import (
	"fmt"
	"strings"

	"github.com/osatools/osamcp/pkg/catalog"
	"github.com/osatools/osamcp/pkg/observability"
	"github.com/osatools/osamcp/pkg/osascript"
	"github.com/osatools/osamcp/pkg/server"
	"github.com/osatools/osamcp/pkg/transport"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ServeCmd creates the serve command.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a server exposing the scripts directory as tools",
		Long: `Run a server that scans the scripts directory for applications and exposes
each one as an AppleScript automation tool over a length-framed JSON-RPC
channel. With the stdio transport, stdout carries frames and all logging
goes to stderr.

Every flag can also be set through the environment as OSAMCP_<FLAG>, for
example OSAMCP_SCRIPTS_DIR or OSAMCP_TOOL_TIMEOUT.`,
		SilenceUsage: true,
		RunE: func(thisCmd *cobra.Command, _ []string) error {
			v := viper.New()
			v.SetEnvPrefix("OSAMCP")
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			if err := v.BindPFlags(thisCmd.Flags()); err != nil {
				return fmt.Errorf("error binding flags: %w", err)
			}

			observability.InitLogger(v.GetString("log-level"), v.GetString("log-format"))

			registry, err := catalog.Load(v.GetString("scripts-dir"))
			if err != nil {
				return fmt.Errorf("error loading tool catalog: %w", err)
			}

			t, err := transport.New(v.GetString("transport"), v.GetString("socket-path"))
			if err != nil {
				return fmt.Errorf("error creating transport: %w", err)
			}

			runner := osascript.NewRunner()
			runner.Timeout = v.GetDuration("tool-timeout")
			runner.MaxScriptBytes = v.GetInt("max-script-bytes")

			if addr := v.GetString("metrics-addr"); addr != "" {
				observability.ServeMetrics(addr)
			}

			log.Info().
				Str("transport", v.GetString("transport")).
				Str("scripts_dir", v.GetString("scripts-dir")).
				Int("tools", registry.Len()).
				Msg("starting server")

			return server.New(t, registry, runner, Version).Run(thisCmd.Context())
		},
	}

	cmd.Flags().String("transport", DefaultTransport, "Transport to serve on (stdio, unix-socket)")
	cmd.Flags().String("socket-path", "", "Socket path for the unix-socket transport")
	cmd.Flags().Duration("tool-timeout", osascript.DefaultTimeout, "Deadline for a single tool invocation (0 disables it)")
	cmd.Flags().Int("max-script-bytes", osascript.DefaultMaxScriptBytes, "Largest accepted script argument in bytes")
	cmd.Flags().String("metrics-addr", "", "Address for the Prometheus metrics listener (empty disables it)")
	cmd.Flags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.Flags().String("log-format", "json", "Log format (json, console)")

	return cmd
}
