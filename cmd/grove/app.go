package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pkt.systems/pslog"

	"pkt.systems/grove/client"
)

const (
	cfgServer    = "server"
	cfgEnv       = "env"
	cfgChainID   = "chain_id"
	cfgTimeout   = "timeout"
	cfgPollEvery = "poll_interval"
	cfgWaitFor   = "propagation_timeout"
)

func submain(ctx context.Context) int {
	baseLogger := pslog.LoggerFromEnv(context.Background(),
		pslog.WithEnvPrefix("GROVE_LOG_"),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
		pslog.WithEnvWriter(os.Stderr),
	).With("app", "grove")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(baseLogger)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func newRootCommand(logger pslog.Logger) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GROVE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "grove",
		Short:         "Upload, inspect, and mutate resources on a grove storage backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()
	flags.String("server", "", "backend base URL (overrides --env)")
	flags.String("env", "production", "target environment: production or testnet")
	flags.Int64("chain-id", 0, "default chain id for ACL resolution (overrides the environment's)")
	flags.Duration("timeout", client.DefaultHTTPTimeout, "HTTP timeout for JSON requests")
	flags.Duration("poll-interval", client.DefaultPollInterval, "pause between propagation polls")
	flags.Duration("propagation-timeout", client.DefaultPropagationTimeout, "total time to wait for propagation")
	_ = v.BindPFlag(cfgServer, flags.Lookup("server"))
	_ = v.BindPFlag(cfgEnv, flags.Lookup("env"))
	_ = v.BindPFlag(cfgChainID, flags.Lookup("chain-id"))
	_ = v.BindPFlag(cfgTimeout, flags.Lookup("timeout"))
	_ = v.BindPFlag(cfgPollEvery, flags.Lookup("poll-interval"))
	_ = v.BindPFlag(cfgWaitFor, flags.Lookup("propagation-timeout"))

	cmd.AddCommand(
		newUploadCommand(v, logger),
		newAllocateCommand(v, logger),
		newResolveCommand(v, logger),
		newStatusCommand(v, logger),
		newWaitCommand(v, logger),
		newEditCommand(v, logger),
		newDeleteCommand(v, logger),
	)
	return cmd
}

func resolveEnvironment(v *viper.Viper) (client.Environment, error) {
	env := strings.TrimSpace(strings.ToLower(v.GetString(cfgEnv)))
	var base client.Environment
	switch env {
	case "", "production":
		base = client.Production()
	case "testnet":
		base = client.Testnet()
	default:
		return client.Environment{}, fmt.Errorf("unknown environment %q (want production or testnet)", env)
	}
	if server := strings.TrimSpace(v.GetString(cfgServer)); server != "" {
		base = client.CustomEnvironment(server, base.ChainID)
	}
	if chainID := v.GetInt64(cfgChainID); chainID > 0 {
		base.ChainID = chainID
	}
	return base, nil
}

func buildClient(v *viper.Viper, logger pslog.Base) (*client.Client, error) {
	env, err := resolveEnvironment(v)
	if err != nil {
		return nil, err
	}
	opts := []client.Option{
		client.WithLogger(logger),
	}
	if d := v.GetDuration(cfgTimeout); d > 0 {
		opts = append(opts, client.WithHTTPTimeout(d))
	}
	if d := v.GetDuration(cfgPollEvery); d > 0 {
		opts = append(opts, client.WithPollInterval(d))
	}
	if d := v.GetDuration(cfgWaitFor); d > 0 {
		opts = append(opts, client.WithPropagationTimeout(d))
	}
	return client.New(env, opts...)
}

func waitIfRequested(ctx context.Context, cli *client.Client, keyOrURI string, wait bool) error {
	if !wait {
		return nil
	}
	started := time.Now()
	if err := cli.WaitForPropagation(ctx, keyOrURI); err != nil {
		return err
	}
	fmt.Printf("propagated in %s\n", time.Since(started).Round(time.Millisecond))
	return nil
}
