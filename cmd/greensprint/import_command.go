package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"greensprint/internal/recordaccess"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import tree registrations from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			if !strings.EqualFold(filepath.Ext(path), ".csv") {
				return fmt.Errorf("unsupported file type %q, expected a .csv file", filepath.Ext(path))
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if _, err := os.Stat(abs); err != nil {
				return fmt.Errorf("cannot access %s: %w", abs, err)
			}

			return ctx.withSession(func(access recordaccess.Access) error {
				result, err := access.ImportFile(cmd.Context(), abs)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				if result.Failed > 0 {
					fmt.Fprintf(out, "Imported %d trees from %s (%d rows failed)\n", result.Imported, result.File, result.Failed)
				} else {
					fmt.Fprintf(out, "Imported %d trees from %s\n", result.Imported, result.File)
				}
				for _, rowErr := range result.RowErrors {
					fmt.Fprintf(out, "  %s\n", rowErr)
				}
				return nil
			})
		},
	}
	return cmd
}
