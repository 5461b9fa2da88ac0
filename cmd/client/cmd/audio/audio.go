package audio

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// AudioCmd - родительская команда для работы с аудиозаписями маркеров
var AudioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Аудиозаписи маркеров",
	Long:  `Загрузка, скачивание и удаление аудиозаписей маркеров.`,
}

func init() {
	AudioCmd.AddCommand(AttachCmd)
	AudioCmd.AddCommand(FetchCmd)
	AudioCmd.AddCommand(DetachCmd)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("неверный ID маркера: %q", s)
	}
	return id, nil
}
