package marker

import (
	"fmt"

	"noisemap/cmd/client/cmd/cli"

	"github.com/spf13/cobra"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список маркеров",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		markers, err := rt.Sync.FetchAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка маркеров: %w", err)
		}

		return rt.PrintMarkers(markers)
	},
}
