package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"greensprint/internal/api"
	"greensprint/internal/ipc"
	"greensprint/internal/recordaccess"
)

func newTreeCommand(ctx *commandContext) *cobra.Command {
	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Register and inspect trees",
	}

	treeCmd.AddCommand(newTreeRegisterCommand(ctx))
	treeCmd.AddCommand(newTreeListCommand(ctx))
	treeCmd.AddCommand(newTreeShowCommand(ctx))
	treeCmd.AddCommand(newTreeRemoveCommand(ctx))

	return treeCmd
}

func newTreeRegisterCommand(ctx *commandContext) *cobra.Command {
	var species string
	var planter string
	var description string
	var campaignID string
	var lat float64
	var lng float64
	var plantedAt string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a newly planted tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.TreeRegisterRequest{
				Species:     species,
				Description: description,
				Planter:     planter,
				CampaignID:  campaignID,
				PlantedAt:   plantedAt,
			}
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				req.Lat = &lat
				req.Lng = &lng
			}

			return ctx.withSession(func(access recordaccess.Access) error {
				tree, err := access.RegisterTree(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, tree)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered tree %s (%s) planted by %s\n", tree.Code, tree.Species, planter)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&species, "species", "", "Tree species (required)")
	cmd.Flags().StringVar(&planter, "planter", "", "Username of the planter (required)")
	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	cmd.Flags().StringVar(&campaignID, "campaign", "", "Campaign the tree belongs to")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Planting latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Planting longitude")
	cmd.Flags().StringVar(&plantedAt, "planted-at", "", "Planting time (RFC 3339, defaults to now)")
	_ = cmd.MarkFlagRequired("species")
	_ = cmd.MarkFlagRequired("planter")
	return cmd
}

func newTreeListCommand(ctx *commandContext) *cobra.Command {
	var status string
	var species string
	var planter string
	var campaignID string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered trees",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.TreeListRequest{
				Status:     status,
				Species:    species,
				PlantedBy:  planter,
				CampaignID: campaignID,
				Limit:      limit,
			}

			return ctx.withSession(func(access recordaccess.Access) error {
				items, err := access.ListTrees(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, api.TreeListResponse{Items: items})
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No trees registered")
					return nil
				}
				table := renderTable(
					[]string{"Code", "Species", "Status", "Planter", "Planted", "Scans"},
					buildTreeRows(items),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (active, removed, dead)")
	cmd.Flags().StringVar(&species, "species", "", "Filter by species")
	cmd.Flags().StringVar(&planter, "planter", "", "Filter by planter user ID")
	cmd.Flags().StringVar(&campaignID, "campaign", "", "Filter by campaign")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows to return")
	return cmd
}

func newTreeShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|code>",
		Short: "Show one tree with its planter, campaign, and scan history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(access recordaccess.Access) error {
				detail, err := access.DescribeTree(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, detail)
				}

				out := cmd.OutOrStdout()
				tree := detail.Tree
				fmt.Fprintf(out, "Tree %s (%s)\n", tree.Code, tree.Species)
				fmt.Fprintf(out, "  ID:          %s\n", tree.ID)
				fmt.Fprintf(out, "  Status:      %s\n", formatStatusLabel(tree.Status))
				if tree.Description != "" {
					fmt.Fprintf(out, "  Description: %s\n", tree.Description)
				}
				if detail.Planter != nil {
					fmt.Fprintf(out, "  Planter:     %s\n", detail.Planter.Username)
				}
				if detail.Campaign != nil {
					fmt.Fprintf(out, "  Campaign:    %s\n", detail.Campaign.Name)
				}
				fmt.Fprintf(out, "  Location:    %s\n", formatLocation(tree.Lat, tree.Lng))
				fmt.Fprintf(out, "  Planted:     %s\n", formatDisplayTime(tree.PlantedAt))
				fmt.Fprintf(out, "  Scans:       %d\n", tree.ScanCount)

				if len(detail.Scans) > 0 {
					fmt.Fprintln(out)
					rows := make([][]string, 0, len(detail.Scans))
					for _, scan := range detail.Scans {
						rows = append(rows, []string{
							formatDisplayTime(scan.ScannedAt),
							scan.ScannedBy,
							scan.MatchedField,
							formatLocation(scan.Lat, scan.Lng),
						})
					}
					table := renderTable(
						[]string{"Scanned", "By", "Matched", "Location"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
					)
					fmt.Fprintln(out, table)
				}
				return nil
			})
		},
	}
}

func newTreeRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id|code>",
		Short: "Mark a tree as removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(access recordaccess.Access) error {
				if err := access.RemoveTree(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tree %s removed\n", args[0])
				return nil
			})
		},
	}
}
