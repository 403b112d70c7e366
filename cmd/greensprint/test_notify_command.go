package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"greensprint/internal/ipc"
	"greensprint/internal/recordaccess"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification utilities",
	}
	cmd.AddCommand(newNotifyTestCommand(ctx))
	return cmd
}

func newNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test message to the configured ntfy topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(access recordaccess.Access) error {
				sent, detail, err := access.TestNotification(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, ipc.TestNotificationResponse{Sent: sent, Detail: detail})
				}
				out := cmd.OutOrStdout()
				if sent {
					fmt.Fprintln(out, "Test notification sent")
				} else {
					fmt.Fprintf(out, "Not sent: %s\n", detail)
				}
				return nil
			})
		},
	}
}
