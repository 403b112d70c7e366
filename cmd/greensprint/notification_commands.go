package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"greensprint/internal/api"
	"greensprint/internal/ipc"
	"greensprint/internal/recordaccess"
)

func newNotificationsCommand(ctx *commandContext) *cobra.Command {
	var (
		unreadOnly bool
		markRead   bool
	)

	cmd := &cobra.Command{
		Use:   "notifications <username>",
		Short: "Show a user's notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if username == "" {
				return fmt.Errorf("username is required")
			}
			return ctx.withSession(func(access recordaccess.Access) error {
				if markRead {
					marked, err := access.MarkNotificationsRead(cmd.Context(), username)
					if err != nil {
						return err
					}
					if ctx.jsonMode() {
						return writeJSON(cmd, ipc.NotificationsReadResponse{Marked: marked})
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Marked %d notifications read\n", marked)
					return nil
				}

				items, err := access.Notifications(cmd.Context(), username, unreadOnly)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, api.NotificationListResponse{Items: items})
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					if unreadOnly {
						fmt.Fprintln(out, "No unread notifications")
					} else {
						fmt.Fprintln(out, "No notifications")
					}
					return nil
				}
				for _, item := range items {
					marker := " "
					if !item.Read {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s  %s\n", marker, formatDisplayTime(item.CreatedAt), item.Title)
					if item.Body != "" {
						fmt.Fprintf(out, "    %s\n", item.Body)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Show only unread notifications")
	cmd.Flags().BoolVar(&markRead, "mark-read", false, "Mark all notifications as read instead of listing")
	return cmd
}

func newAwardsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "awards <username>",
		Short: "Show a user's earned achievements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if username == "" {
				return fmt.Errorf("username is required")
			}
			return ctx.withSession(func(access recordaccess.Access) error {
				items, err := access.Awards(cmd.Context(), username)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, api.AwardListResponse{Items: items})
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No awards earned yet")
					return nil
				}
				for _, award := range items {
					fmt.Fprintf(out, "%s  %s (%s)\n", formatDisplayTime(award.AwardedAt), award.Title, award.Code)
				}
				return nil
			})
		},
	}
	return cmd
}
