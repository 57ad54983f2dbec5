// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/probekit/dnsping/probe"
)

var resolveCmdTCP bool
var resolveCmdTCPPort int

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <hostname>",
	Short: "Resolve a hostname and measure the round trip",
	Long: `Resolve a hostname against the configured resolver and report the
round-trip time, the response code, and each address record.
For example:

	dnsping resolve tmz.com
	dnsping resolve --resolver 8.8.8.8 --tcp example.com`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hostname := args[0]
		prober := probe.New(options)

		log.Info().
			Str("hostname", hostname).
			Str("resolver", options.Resolver).
			Msg("resolving")

		res, err := prober.Resolve(hostname)
		switch {
		case errors.Is(err, probe.ErrQueryTimeout):
			log.Fatal().Msg("timed out waiting for the resolver")
		case err != nil:
			log.Fatal().Err(err).Msg("resolution failed")
		}

		fmt.Printf("DNS RTT: %.2f ms | RCODE: %s\n", milliseconds(res.RTT), res.Response.RcodeName())

		if len(res.Response.Answers) == 0 {
			fmt.Println("No A records in the answer section (the resolver may have returned a referral).")
			return
		}
		for _, ans := range res.Response.Answers {
			fmt.Printf("A %s = %s (TTL %d)\n", hostname, ans.Addr, ans.TTL)
		}

		if !resolveCmdTCP {
			return
		}

		addr := res.Response.Answers[0].Addr
		connRTT, err := prober.ConnectRTT(addr, resolveCmdTCPPort)
		if err != nil {
			log.Fatal().Err(err).Msg("connect failed")
		}
		fmt.Printf("TCP connect RTT to %s:%d = %.2f ms\n", addr, resolveCmdTCPPort, milliseconds(connRTT))
	},
}

// milliseconds converts a duration for human-readable printing.
func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().BoolVar(&resolveCmdTCP, "tcp", false, "also measure TCP connect latency to the first address")
	resolveCmd.Flags().IntVar(&resolveCmdTCPPort, "tcp-port", 80, "TCP port for the connect measurement")
}
