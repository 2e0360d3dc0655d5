package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/desertthunder/acx/internal/server"
	"github.com/desertthunder/acx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the app version endpoints until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := shared.OrDefault(cmd.String("host"), r.config.Server.Host)
	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("%w: port %d out of range", shared.ErrInvalidFlag, port)
	}

	info := server.NewVersionInfo(r.config.Version)
	router := server.NewVersionRouter(info, server.Logging(shared.WithLogger(r.logger, "component", "http")))

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	r.logger.Info("serving app version", "version", info.Version, "build", info.BuildNumber)
	r.writePlain("Serving version %s (build %d) on http://%s\n", info.Version, info.BuildNumber, addr)
	for _, route := range router.Routes() {
		r.writePlain("  %s\n", route)
	}

	return server.ListenAndServe(ctx, addr, router, r.logger)
}
