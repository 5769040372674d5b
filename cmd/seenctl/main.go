// Command seenctl administers the seen event store: schema migrations and
// one-off lookups against the same database the bot writes to.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/onnwee/seenbot/db"
)

var (
	dsn        string
	jsonOutput bool

	database *sql.DB
)

func defaultDSN() string {
	if s := os.Getenv("DB_DSN"); s != "" {
		return s
	}
	return db.DefaultDSN
}

var rootCmd = &cobra.Command{
	Use:           "seenctl <command>",
	Short:         "Administer the seen event store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Connect(cmd.Context(), dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		database = conn
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if database != nil {
			_ = database.Close()
		}
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", defaultDSN(), "Postgres connection string")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seenCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
