// Command postboard is the administration CLI: schema migrations and demo data.
package main

import (
	"fmt"
	"os"

	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/middleware"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "postboard",
	Short: "Postboard administration tool",
	Long: `postboard manages a Postboard database: apply or roll back schema
migrations and fill a development database with fake users and posts.

Configuration is read the same way as the server: config.yml, the
APP_ENV profile file, .env and the environment.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

// openDB connects without running the automatic development migration, so
// the migrate commands observe the real schema state.
func openDB() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	middleware.ConfigureLogger(cfg.Env)
	return database.Open(database.Dialector(cfg))
}

func main() {
	rootCmd.AddCommand(newMigrateCmd(), newSeedCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
