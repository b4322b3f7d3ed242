package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"xdao.co/concept/config"
	"xdao.co/concept/logging"
	"xdao.co/concept/model"
	"xdao.co/concept/rpc"
	"xdao.co/concept/session"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// usageError marks bad invocations; they exit 2 instead of 1.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

type cli struct {
	out     io.Writer
	cfgFile string
	cfg     config.Client
	// factory builds the channel factory from the loaded configuration.
	factory func(config.Client) (rpc.ChannelFactory, error)
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	return runWith(&cli{out: out, factory: config.Client.ChannelFactory}, args, errOut)
}

func runWith(c *cli, args []string, errOut io.Writer) int {
	logging.New(logging.Config{App: "conceptctl", Level: "warn", Console: true, Out: errOut})

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(c.out)
	root.SetErr(errOut)
	err := root.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(errOut, "%v\n\n%s", ue.err, root.UsageString())
		return 2
	}
	b, _ := json.MarshalIndent(model.FromError(err), "", "  ")
	fmt.Fprintln(errOut, string(b))
	return 1
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "conceptctl",
		Short: "Inspect and edit attribute types on a concept server",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.LoadClient(c.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return model.NewError(model.ErrConfiguration, err.Error())
			}
			c.cfg = cfg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "YAML config file")
	pf.String("address", "", "server host:port (default "+config.DefaultAddress+")")
	pf.Bool("tls", false, "encrypt the channel")
	pf.String("root-ca", "", "PEM trust anchors (default: platform trust store)")
	pf.Duration("timeout", 0, "per-call timeout (default "+config.DefaultTimeout.String()+")")
	pf.Int("max-msg-bytes", 0, "max message size in bytes (0 = gRPC default)")

	root.AddCommand(
		c.defineCmd(),
		c.defineEntityCmd(),
		c.typeCmd(),
		c.putCmd(),
		c.getCmd(),
		c.instancesCmd(),
		c.subtypesCmd(),
		c.supertypeCmd(),
		c.setSupertypeCmd(),
		c.ownersCmd(),
		c.ownsCmd(),
		c.regexCmd(),
	)
	return root
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(lo, hi)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// withTx opens a transaction for one command. Write transactions are
// committed when fn succeeds.
func (c *cli) withTx(ctx context.Context, typ session.Type, fn func(*session.Tx) (any, error)) error {
	factory, err := c.factory(c.cfg)
	if err != nil {
		return err
	}
	ch, err := factory.ForAddress(c.cfg.Address)
	if err != nil {
		return err
	}
	defer ch.Close()

	tx, err := session.Open(ctx, ch, typ, session.WithTimeout(c.cfg.Timeout))
	if err != nil {
		return err
	}
	defer func() { _ = tx.Close(context.Background()) }()

	result, err := fn(tx)
	if err != nil {
		return err
	}
	if typ == session.Write {
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}
	return c.print(result)
}

func (c *cli) print(v any) error {
	if v == nil {
		return nil
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
