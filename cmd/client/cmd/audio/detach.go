package audio

import (
	"fmt"

	"noisemap/cmd/client/cmd/cli"
	"noisemap/internal/app/client"

	"github.com/spf13/cobra"
)

var DetachCmd = &cobra.Command{
	Use:   "detach <id>",
	Short: "Сбросить запись маркера",
	Long:  `Обнуляет громкость и статус записи, маркер становится пустым.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		m, err := rt.Sync.FetchOne(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("ошибка получения маркера: %w", err)
		}

		if _, err := client.DetachAudio(cmd.Context(), rt.Sync, m); err != nil {
			return err
		}

		rt.Success("Запись маркера %d сброшена", id)
		return nil
	},
}
