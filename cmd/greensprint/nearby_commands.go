package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"greensprint/internal/api"
	"greensprint/internal/recordaccess"
)

func newNearbyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Search for trees and campaigns around a point",
	}
	cmd.AddCommand(newNearbyTreesCommand(ctx))
	cmd.AddCommand(newNearbyCampaignsCommand(ctx))
	return cmd
}

func newNearbyTreesCommand(ctx *commandContext) *cobra.Command {
	var (
		lat      float64
		lng      float64
		radiusKm float64
	)

	cmd := &cobra.Command{
		Use:   "trees",
		Short: "List trees near a location, closest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(access recordaccess.Access) error {
				items, err := access.NearbyTrees(cmd.Context(), lat, lng, radiusKm)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, api.NearbyTreesResponse{Items: items})
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No trees within range")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Distance", "Code", "Species", "Planter"},
					buildNearbyTreeRows(items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	addNearbyFlags(cmd, &lat, &lng, &radiusKm)
	return cmd
}

func newNearbyCampaignsCommand(ctx *commandContext) *cobra.Command {
	var (
		lat      float64
		lng      float64
		radiusKm float64
	)

	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "List campaigns near a location, closest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(access recordaccess.Access) error {
				items, err := access.NearbyCampaigns(cmd.Context(), lat, lng, radiusKm)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, api.NearbyCampaignsResponse{Items: items})
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No campaigns within range")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Distance", "Name", "Status", "Organizer"},
					buildNearbyCampaignRows(items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	addNearbyFlags(cmd, &lat, &lng, &radiusKm)
	return cmd
}

func addNearbyFlags(cmd *cobra.Command, lat, lng, radiusKm *float64) {
	cmd.Flags().Float64Var(lat, "lat", 0, "Latitude of the search center")
	cmd.Flags().Float64Var(lng, "lng", 0, "Longitude of the search center")
	cmd.Flags().Float64Var(radiusKm, "radius", 0, "Search radius in kilometers (0 uses the configured default)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
}
