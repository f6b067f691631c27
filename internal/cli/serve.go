package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netdiag/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxBody int64
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

  POST /api/topology   table body → topology document (yaml or json)
  POST /api/diagram    table body → diagram (png, svg, pdf, dot, d2)
  GET  /healthz        liveness
  GET  /metrics        Prometheus metrics

The listen address defaults to the config file's server.addr, then
NETDIAG_ADDR, then ` + server.DefaultAddr + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyString(cmd, "addr", &addr, c.Config.Server.Addr)
			if !cmd.Flags().Changed("max-body") && c.Config.Server.MaxBodyBytes > 0 {
				maxBody = c.Config.Server.MaxBodyBytes
			}
			return c.runServe(cmd.Context(), addr, maxBody, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum upload size in bytes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, maxBody int64, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	server.NewMetrics(reg).Install()

	srv := server.New(server.Options{
		Runner:       runner,
		Logger:       c.Logger,
		Registry:     reg,
		MaxBodyBytes: maxBody,
	})

	backend := c.Config.Cache.Backend
	if noCache {
		backend = cacheBackendNone
	}
	printInfo("Listening on %s", StyleLink.Render(displayURL(addr)))
	printKeyValue("metrics", displayURL(addr)+"/metrics")
	printKeyValue("cache", backend)
	err = srv.Start(ctx, addr)
	if errors.Is(err, context.Canceled) {
		printSuccess("Server stopped")
		return nil
	}
	return err
}

// displayURL turns a listen address into a clickable URL.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
