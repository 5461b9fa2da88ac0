package cmd

import (
	"fmt"

	"noisemap/cmd/client/cmd/cli"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Проверить доступность сервера",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		if err := rt.Sync.HealthCheck(cmd.Context()); err != nil {
			return fmt.Errorf("сервер недоступен: %w", err)
		}

		rt.Success("Сервер %s доступен", rt.Config.ServerAddress)
		return nil
	},
}
