package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"greensprint/internal/ipc"
	"greensprint/internal/recordaccess"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var scanner string
	var lat float64
	var lng float64
	var noEvent bool

	cmd := &cobra.Command{
		Use:   "scan <identifier>",
		Short: "Resolve a scanned QR payload, tree code, URL, or UUID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(args[0])
			if raw == "" {
				return errors.New("identifier is required")
			}

			req := ipc.ScanRequest{
				Raw:         raw,
				Scanner:     scanner,
				RecordEvent: !noEvent,
			}
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				req.Lat = &lat
				req.Lng = &lng
			}

			return ctx.withSession(func(access recordaccess.Access) error {
				result, err := access.Scan(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, result)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Matched tree %s (%s) via %s\n", result.Tree.Code, result.Tree.Species, result.MatchedField)
				fmt.Fprintf(out, "  ID:       %s\n", result.Tree.ID)
				if result.Tree.PlantedBy != "" {
					fmt.Fprintf(out, "  Planter:  %s\n", result.Tree.PlantedBy)
				}
				fmt.Fprintf(out, "  Location: %s\n", formatLocation(result.Tree.Lat, result.Tree.Lng))
				fmt.Fprintf(out, "  Scans:    %d\n", result.Tree.ScanCount)
				if result.Warning != "" {
					fmt.Fprintf(out, "Warning: %s\n", result.Warning)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scanner, "scanner", "", "Username recorded as the scanner")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Scan latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Scan longitude")
	cmd.Flags().BoolVar(&noEvent, "no-event", false, "Resolve without recording a scan event")
	return cmd
}
