package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/okx/batchtransfer/batch"
	"github.com/okx/batchtransfer/utils"
)

const (
	FlagConfigFile         = "config-file"
	FlagVerbosity          = "verbosity"
	FlagRecipients         = "recipients"
	FlagRPCURL             = "rpc-url"
	FlagGasLimit           = "gas-limit"
	FlagGasPriceMultiplier = "gas-price-multiplier"
	FlagRPCTimeout         = "rpc-timeout"
	FlagRate               = "rate"
	FlagReport             = "report"
	FlagFailed             = "failed"
)

var (
	configPath string
	verbosity  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "batchtransfer",
		Short: "Send native token transfers to a list of recipients",
		Long: `A command-line tool that validates a recipient list and sends one signed
native token transfer per recipient from a single funded account, in order.

Recipient file format, one entry per line:
  <address> <amount-in-ether>`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(verbosity)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, FlagConfigFile, "f", "", "Path to a config file (.env, .json, .yaml or .toml)")
	rootCmd.PersistentFlags().IntVar(&verbosity, FlagVerbosity, 3, "Log verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace")

	rootCmd.AddCommand(
		sendCmd(),
		validateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setupLogger(verbosity int) {
	useColor := false
	if fi, err := os.Stderr.Stat(); err == nil {
		useColor = fi.Mode()&os.ModeCharDevice != 0
	}
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(verbosity), useColor)
	log.SetDefault(log.NewLogger(handler))
}

func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Validate the recipient list and send the transfers",
		Long: `Validate every recipient first, then send one transfer per recipient.
A failed transfer is reported and the batch moves on to the next recipient.

The sender key is read from PRIVATE_KEY or the config file only.

Example:
  batchtransfer send -f ./transfer.env -r ./recipients.txt --report ./report.tsv --failed ./failed.txt`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := utils.LoadConfig(configPath, cmd.Flags())
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := batch.Send(ctx, cfg, log.Root())
			if err != nil {
				fmt.Printf("Batch transfer failed: %v\n", err)
				os.Exit(1)
			}
			if res.Failed > 0 {
				stop()
				os.Exit(2)
			}
		},
	}

	cmd.Flags().StringP(FlagRecipients, "r", "", "Path to the recipient list (default recipients.txt)")
	cmd.Flags().String(FlagRPCURL, "", "JSON-RPC endpoint of the node")
	cmd.Flags().Uint64(FlagGasLimit, 0, "Gas limit per transfer (default 21000)")
	cmd.Flags().Uint64(FlagGasPriceMultiplier, 0, "Percentage applied to the suggested gas price (default 110)")
	cmd.Flags().Duration(FlagRPCTimeout, 0, "Timeout of a single RPC call (default 10s)")
	cmd.Flags().Float64(FlagRate, 0, "Maximum transfers per second, 0 means no limit")
	cmd.Flags().String(FlagReport, "", "Write a tab separated report of every outcome to this file")
	cmd.Flags().String(FlagFailed, "", "Write failed entries to this file in recipient list format")

	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the recipient list without sending anything",
		Long: `Parse and validate the recipient list. No connection to the node is made.

Example:
  batchtransfer validate -r ./recipients.txt`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := utils.LoadConfig(configPath, cmd.Flags())
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}

			recipients, err := batch.Check(cfg.RecipientsFile)
			if err != nil {
				fmt.Printf("Recipient list is invalid: %v\n", err)
				os.Exit(1)
			}
			log.Info("Recipient list is valid", "path", cfg.RecipientsFile, "recipients", len(recipients))
		},
	}

	cmd.Flags().StringP(FlagRecipients, "r", "", "Path to the recipient list (default recipients.txt)")

	return cmd
}
