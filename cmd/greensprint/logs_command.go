package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"greensprint/internal/ipc"
	"greensprint/internal/logs"
	"greensprint/internal/logstream"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var tail logstream.TailClient
			if client, dialErr := ipc.Dial(ctx.socketPath()); dialErr == nil {
				defer client.Close()
				tail = client
			}

			filePath := logs.CurrentPath(cfg.Paths.LogDir)
			if tail == nil && filePath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
				return nil
			}

			printed, err := logstream.Stream(cmd.Context(), tail, filePath,
				logstream.Options{Lines: lines, Follow: follow},
				func(line string) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				})
			if err != nil {
				return err
			}
			if !printed && !follow {
				fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	return cmd
}
