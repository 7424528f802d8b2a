package cmd

import (
	"log"

	"github.com/anoixa/registration-system/config"
	"github.com/anoixa/registration-system/internal/app"
	"github.com/spf13/cobra"
)

// migrateCmd 仅执行数据库迁移后退出
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migration and exit",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()

		container := app.NewContainer(config.Get())
		if err := container.Init(); err != nil {
			log.Fatalf("Failed to initialize container: %v", err)
		}
		defer container.Close()

		if err := container.GetDatabaseFactory().AutoMigrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration completed")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
