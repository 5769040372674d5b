package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onnwee/seenbot/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply all pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.RunMigrations(database); err != nil {
			return err
		}
		return printVersion()
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.MigrateDown(database); err != nil {
			return err
		}
		return printVersion()
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion()
	},
}

func init() {
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func printVersion() error {
	version, dirty, err := db.GetMigrationVersion(database)
	if err != nil {
		return err
	}
	if jsonOutput {
		data, err := json.MarshalIndent(map[string]any{"version": version, "dirty": dirty}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Printf("Schema version: %d", version)
	if dirty {
		fmt.Print(" (dirty)")
	}
	fmt.Println()
	return nil
}
