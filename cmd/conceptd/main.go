package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"xdao.co/concept/config"
	"xdao.co/concept/logging"
	"xdao.co/concept/rpc"
	"xdao.co/concept/schema"
	"xdao.co/concept/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, errOut io.Writer) int {
	var cfgFile string
	cmd := &cobra.Command{
		Use:           "conceptd",
		Short:         "Serve an in-memory concept schema over gRPC",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDaemon(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger := logging.New(logging.Config{App: "conceptd", Level: cfg.LogLevel, Console: cfg.LogConsole, Out: errOut})
			lis, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, lis, logger)
		},
	}
	cmd.SetArgs(args)
	cmd.SetErr(errOut)
	fs := cmd.Flags()
	fs.StringVar(&cfgFile, "config", "", "YAML config file")
	fs.String("listen", "", "listen address (default "+config.DefaultListen+")")
	fs.String("tls-cert", "", "PEM server certificate")
	fs.String("tls-key", "", "PEM server key")
	fs.String("log-level", "", "log level (default info)")
	fs.Bool("log-console", false, "human-readable logs")

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

// serve runs the server on lis until ctx ends.
func serve(ctx context.Context, cfg config.Daemon, lis net.Listener, logger zerolog.Logger) error {
	opts := server.Options(logger)
	if cfg.TLS() {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("conceptd: loading tls key pair: %w", err)
		}
		opts = append(opts, grpc.Creds(credentials.NewTLS(&tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})))
	}
	gs := grpc.NewServer(opts...)
	rpc.RegisterConceptServer(gs, server.New(schema.New()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("listen", lis.Addr().String()).Bool("tls", cfg.TLS()).Msg("conceptd listening")
		if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		gs.GracefulStop()
		logger.Info().Msg("conceptd stopped")
		return nil
	})
	return g.Wait()
}
