package audio

import (
	"fmt"
	"os"

	"noisemap/cmd/client/cmd/cli"

	"github.com/spf13/cobra"
)

var outPath string

var FetchCmd = &cobra.Command{
	Use:   "fetch <id>",
	Short: "Скачать запись маркера",
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

		data, err := rt.Sync.FetchAudio(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("ошибка скачивания записи: %w", err)
		}

		path := outPath
		if path == "" {
			path = fmt.Sprintf("%d.mp3", id)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("ошибка сохранения файла: %w", err)
		}

		rt.Success("Запись сохранена в %s (%d байт)", path, len(data))
		return nil
	},
}

func init() {
	FetchCmd.Flags().StringVarP(&outPath, "out", "o", "", "файл для сохранения (по умолчанию <id>.mp3)")
}
