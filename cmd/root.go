// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/probekit/dnsping/probe"
)

var (
	// options are CLI options shared by all commands
	options = probe.NewOptions("1.1.1.1")

	// debug enables debug logging
	debug bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dnsping",
	Short: "Measure DNS resolution and TCP connect latency",
	Long: `Measure DNS resolution and TCP connect latency.

dnsping hand-builds a raw DNS query, sends it to a resolver over UDP,
and times the round trip. It can additionally time a TCP handshake
against one of the resolved addresses.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup the logger to use
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
		if debug {
			log.Logger = log.Logger.Level(zerolog.DebugLevel)
		} else {
			log.Logger = log.Logger.Level(zerolog.InfoLevel)
		}

		options.Logger = log.Logger
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&options.Resolver, "resolver", "r", "1.1.1.1", "resolver IP address to query")
	rootCmd.PersistentFlags().IntVar(&options.Port, "port", probe.DefaultPort, "resolver UDP port")
	rootCmd.PersistentFlags().DurationVarP(&options.Timeout, "timeout", "t", probe.DefaultTimeout, "round-trip timeout")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
