package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"greensprint/internal/ipc"
	"greensprint/internal/store"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Record database utilities",
	}
	cmd.AddCommand(newDBHealthCommand(ctx))
	return cmd
}

func newDBHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check record database health (schema, tables, columns)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := fetchDatabaseHealth(cmd, ctx)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database path: %s\n", resp.DBPath)
			fmt.Fprintf(out, "Database exists: %s\n", yesNo(resp.DatabaseExists))
			fmt.Fprintf(out, "Readable: %s\n", yesNo(resp.DatabaseReadable))
			fmt.Fprintf(out, "Schema version: %s\n", resp.SchemaVersion)
			fmt.Fprintf(out, "trees table present: %s\n", yesNo(resp.TableExists))
			if len(resp.ColumnsPresent) > 0 {
				cols := append([]string(nil), resp.ColumnsPresent...)
				sort.Strings(cols)
				fmt.Fprintf(out, "Columns: %s\n", strings.Join(cols, ", "))
			}
			if len(resp.MissingColumns) > 0 {
				missing := append([]string(nil), resp.MissingColumns...)
				sort.Strings(missing)
				fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(missing, ", "))
			} else {
				fmt.Fprintln(out, "Missing columns: none")
			}
			if resp.Error != "" {
				fmt.Fprintf(out, "Error: %s\n", resp.Error)
			}
			return nil
		},
	}
}

// fetchDatabaseHealth asks the daemon first and inspects the database file
// directly when no daemon is serving, so diagnostics work even when the
// daemon refuses to start.
func fetchDatabaseHealth(cmd *cobra.Command, ctx *commandContext) (*ipc.DatabaseHealthResponse, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}

	client, dialErr := ipc.Dial(ctx.socketPath())
	if dialErr == nil {
		defer client.Close()
		return client.DatabaseHealth()
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	health, checkErr := st.CheckHealth(cmd.Context())
	resp := &ipc.DatabaseHealthResponse{
		DBPath:           health.DBPath,
		DatabaseExists:   health.DatabaseExists,
		DatabaseReadable: health.DatabaseReadable,
		TableExists:      health.TableExists,
		ColumnsPresent:   health.ColumnsPresent,
		MissingColumns:   health.MissingColumns,
		SchemaVersion:    health.SchemaVersion,
		Error:            health.Error,
	}
	if checkErr != nil && resp.Error == "" {
		resp.Error = checkErr.Error()
	}
	return resp, nil
}
