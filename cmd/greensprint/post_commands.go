package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"greensprint/internal/api"
	"greensprint/internal/ipc"
	"greensprint/internal/recordaccess"
)

func newPostCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish and read community posts",
	}
	cmd.AddCommand(newPostAddCommand(ctx))
	cmd.AddCommand(newPostListCommand(ctx))
	return cmd
}

func newPostAddCommand(ctx *commandContext) *cobra.Command {
	var (
		author     string
		treeID     string
		campaignID string
	)

	cmd := &cobra.Command{
		Use:   "add <message>",
		Short: "Publish a post to the community feed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := strings.TrimSpace(strings.Join(args, " "))
			if body == "" {
				return fmt.Errorf("post body is required")
			}
			req := ipc.PostAddRequest{
				Author:     author,
				Body:       body,
				TreeID:     treeID,
				CampaignID: campaignID,
			}
			return ctx.withSession(func(access recordaccess.Access) error {
				id, err := access.AddPost(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, ipc.PostAddResponse{ID: id})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Posted #%d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Author username")
	cmd.Flags().StringVar(&treeID, "tree", "", "Attach the post to a tree ID")
	cmd.Flags().StringVar(&campaignID, "campaign", "", "Attach the post to a campaign ID")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newPostListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the community feed, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(access recordaccess.Access) error {
				posts, err := access.Feed(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, api.FeedResponse{Items: posts})
				}
				out := cmd.OutOrStdout()
				if len(posts) == 0 {
					fmt.Fprintln(out, "No posts yet")
					return nil
				}
				for _, post := range posts {
					fmt.Fprintf(out, "#%d  %s  %s: %s\n", post.ID, formatDisplayTime(post.CreatedAt), post.Author, post.Body)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum posts to show")
	return cmd
}
