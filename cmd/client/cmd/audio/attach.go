package audio

import (
	"fmt"
	"os"

	"noisemap/cmd/client/cmd/cli"
	"noisemap/internal/app/client"

	"github.com/spf13/cobra"
)

var amplitude int

var AttachCmd = &cobra.Command{
	Use:   "attach <id> <file.mp3>",
	Short: "Прикрепить запись к маркеру",
	Long: `Загружает запись на сервер и сохраняет громкость маркера.

Громкость считается из пиковой амплитуды записи (--amplitude) как
round(20*log10(amplitude/1.2)) дБ. Маркер получает статус "не проверен".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("ошибка чтения файла: %w", err)
		}

		m, err := rt.Sync.FetchOne(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("ошибка получения маркера: %w", err)
		}

		m, err = client.AttachAudio(cmd.Context(), rt.Sync, m, amplitude, data)
		if err != nil {
			return err
		}

		if rt.JSON {
			return rt.PrintMarker(m)
		}
		rt.Success("Запись прикреплена к маркеру %d, громкость %d дБ", id, m.Volume)
		return nil
	},
}

func init() {
	AttachCmd.Flags().IntVar(&amplitude, "amplitude", 0, "пиковая амплитуда записи")
	_ = AttachCmd.MarkFlagRequired("amplitude")
}
