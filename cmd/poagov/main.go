package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "poagov",
		Short:        "POA Network governance ballot monitor",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Watch governance contracts and send ballot notifications",
		RunE:  runScanner,
	}

	runCmd.Flags().Bool("core", false, "monitor the POA core network")
	runCmd.Flags().Bool("sokol", false, "monitor the Sokol test network")
	runCmd.Flags().Bool("xdai", false, "monitor the xDai network")
	runCmd.Flags().String("network", "", "network name (core, sokol, xdai), used when no network flag is given")
	runCmd.Flags().Bool("v1", false, "monitor the v1 governance contracts")
	runCmd.Flags().Bool("v2", false, "monitor the v2 governance contracts (default)")
	runCmd.Flags().Bool("keys", false, "monitor the voting-to-change-keys contract")
	runCmd.Flags().Bool("threshold", false, "monitor the voting-to-change-min-threshold contract")
	runCmd.Flags().Bool("proxy", false, "monitor the voting-to-change-proxy contract")
	runCmd.Flags().Bool("emission", false, "monitor the voting-to-manage-emission-funds contract")
	runCmd.Flags().StringSlice("monitor", nil, "contract types to monitor (comma-separated)")
	runCmd.Flags().Bool("earliest", false, "scan from block 0")
	runCmd.Flags().Bool("latest", false, "scan only blocks mined after startup")
	runCmd.Flags().Uint64("start", 0, "scan from this block (inclusive)")
	runCmd.Flags().Uint64("tail", 0, "scan the last N blocks before startup")
	runCmd.Flags().Int("block-time", 30, "seconds to wait between polls")
	runCmd.Flags().Uint64("limit", 0, "stop after this many notifications, 0 means unlimited")
	runCmd.Flags().Uint64("max-range", 0, "maximum blocks per query, 0 means unlimited")
	runCmd.Flags().String("rpc", "", "JSON-RPC endpoint, overrides the network default")
	runCmd.Flags().Duration("rpc-timeout", 30*time.Second, "timeout for a single RPC call")
	runCmd.Flags().Int("startup-retries", 5, "retries for the startup tip query")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial startup retry backoff")
	runCmd.Flags().String("signatures", "", "event signature overrides (comma-separated type.version=0x...)")
	runCmd.Flags().Bool("email", false, "send notifications by email")
	runCmd.Flags().String("smtp-host", "", "SMTP host")
	runCmd.Flags().Int("smtp-port", 587, "SMTP port")
	runCmd.Flags().String("smtp-username", "", "SMTP username")
	runCmd.Flags().String("smtp-password", "", "SMTP password")
	runCmd.Flags().String("outgoing-email", "", "sender address")
	runCmd.Flags().StringSlice("email-recipients", nil, "recipient addresses (comma-separated)")
	runCmd.Flags().Bool("log-emails", false, "log every notification body")
	runCmd.Flags().Bool("log-file", false, "also write logs to ./logs/poagov.log")
	runCmd.Flags().String("archive", "", "append notifications to this JSONL file")
	runCmd.Flags().String("dead-letter", "", "append undecodable logs to this JSONL file")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN for notification storage")
	runCmd.Flags().StringSlice("kafka-brokers", nil, "Kafka seed brokers (comma-separated)")
	runCmd.Flags().String("kafka-topic", "poagov-notifications", "Kafka topic for notifications")
	runCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw ballot logs into typed events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input raw logs JSONL")
	decodeCmd.Flags().String("out", "./data/ballot_events.jsonl", "output ballot events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("contract", "", "contract type (keys, threshold, proxy, emission)")
	decodeCmd.Flags().Bool("v1", false, "decode v1 events")
	decodeCmd.Flags().Bool("v2", false, "decode v2 events (default)")
	decodeCmd.Flags().String("signatures", "", "event signature overrides (comma-separated type.version=0x...)")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
