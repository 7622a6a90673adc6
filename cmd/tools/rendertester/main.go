package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/manga-thumb/backend/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "rendertester",
		Short:        "Render manga thumbnails offline from answer fixtures",
		SilenceUsage: true,
	}

	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newCatalogCmd())

	return cmd
}

// loadConfig 读取 .env 与环境变量，作为命令行参数的默认值。
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: .env not loaded, using system environment: %v\n", err)
	}
	return config.Load()
}
