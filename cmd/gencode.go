package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/registration-system/config"
	"github.com/anoixa/registration-system/internal/app"
	"github.com/anoixa/registration-system/utils"
	"github.com/spf13/cobra"
)

var gencodeHours int64

// gencodeCmd 管理端命令行：直接往库里插入一个激活码并打印
// 与 HTTP 生成接口走同一条账本路径
var gencodeCmd = &cobra.Command{
	Use:   "gencode",
	Short: "Generate an activation code",
	Run: func(cmd *cobra.Command, args []string) {
		if gencodeHours < 0 {
			log.Fatal("hours must be non-negative")
		}

		config.InitConfig()

		container := app.NewContainer(config.Get())
		if err := container.Init(); err != nil {
			log.Fatalf("Failed to initialize container: %v", err)
		}
		defer container.Close()

		if err := container.GetDatabaseFactory().AutoMigrate(); err != nil {
			log.Fatalf("Failed to auto migrate database: %v", err)
		}

		code, err := utils.GenerateRandomToken(24)
		if err != nil {
			log.Fatalf("Failed to generate code: %v", err)
		}

		record, err := container.ActivationsRepo.Create(context.Background(), code, gencodeHours)
		if err != nil {
			log.Fatalf("Failed to create activation code: %v", err)
		}

		fmt.Printf("id=%d code=%s end_hour=%d\n", record.ID, record.Code, record.EndHour)
	},
}

func init() {
	gencodeCmd.Flags().Int64Var(&gencodeHours, "hours", 24, "hour allowance of the generated code")
	rootCmd.AddCommand(gencodeCmd)
}
