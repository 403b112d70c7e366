package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"greensprint/internal/api"
	"greensprint/internal/ipc"
	"greensprint/internal/recordaccess"
)

func newCampaignCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Organize and inspect planting campaigns",
	}
	cmd.AddCommand(newCampaignAddCommand(ctx))
	cmd.AddCommand(newCampaignListCommand(ctx))
	cmd.AddCommand(newCampaignShowCommand(ctx))
	return cmd
}

func newCampaignAddCommand(ctx *commandContext) *cobra.Command {
	var (
		name        string
		description string
		organizer   string
		goalTrees   int64
		lat         float64
		lng         float64
		startsAt    string
		endsAt      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a planting campaign",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.CampaignCreateRequest{
				Name:        strings.TrimSpace(name),
				Description: description,
				Organizer:   organizer,
				GoalTrees:   goalTrees,
				StartsAt:    startsAt,
				EndsAt:      endsAt,
			}
			if req.Name == "" {
				return fmt.Errorf("campaign name is required")
			}
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				req.Lat = &lat
				req.Lng = &lng
			}
			return ctx.withSession(func(access recordaccess.Access) error {
				campaign, err := access.CreateCampaign(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, campaign)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created campaign %s (%s)\n", campaign.Name, campaign.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Campaign name")
	cmd.Flags().StringVar(&description, "description", "", "Campaign description")
	cmd.Flags().StringVar(&organizer, "organizer", "", "Organizer username")
	cmd.Flags().Int64Var(&goalTrees, "goal", 0, "Planting goal in trees")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Campaign latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Campaign longitude")
	cmd.Flags().StringVar(&startsAt, "starts", "", "Start time (RFC 3339)")
	cmd.Flags().StringVar(&endsAt, "ends", "", "End time (RFC 3339)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCampaignListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(access recordaccess.Access) error {
				items, err := access.ListCampaigns(cmd.Context(), statuses)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, api.CampaignListResponse{Items: items})
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No campaigns found")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Status", "Goal", "Organizer", "Starts"},
					buildCampaignRows(items),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (planned, active, completed); repeatable")
	return cmd
}

func newCampaignShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a campaign with its planting progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withSession(func(access recordaccess.Access) error {
				progress, err := access.CampaignProgress(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, progress)
				}

				out := cmd.OutOrStdout()
				campaign := progress.Campaign
				fmt.Fprintf(out, "Campaign %s (%s)\n", campaign.Name, campaign.ID)
				fmt.Fprintf(out, "  Status:    %s\n", formatStatusLabel(campaign.Status))
				if campaign.Organizer != "" {
					fmt.Fprintf(out, "  Organizer: %s\n", campaign.Organizer)
				}
				if campaign.Description != "" {
					fmt.Fprintf(out, "  About:     %s\n", campaign.Description)
				}
				if campaign.Lat != nil && campaign.Lng != nil {
					fmt.Fprintf(out, "  Location:  %s\n", formatLocation(campaign.Lat, campaign.Lng))
				}
				if campaign.GoalTrees > 0 {
					fmt.Fprintf(out, "  Planted:   %d of %d (%d%%)\n", progress.Planted, campaign.GoalTrees, progress.Percent)
				} else {
					fmt.Fprintf(out, "  Planted:   %d\n", progress.Planted)
				}
				if campaign.StartsAt != "" {
					fmt.Fprintf(out, "  Starts:    %s\n", formatDisplayTime(campaign.StartsAt))
				}
				if campaign.EndsAt != "" {
					fmt.Fprintf(out, "  Ends:      %s\n", formatDisplayTime(campaign.EndsAt))
				}
				return nil
			})
		},
	}
	return cmd
}
