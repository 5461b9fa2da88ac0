package marker

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// MarkerCmd - родительская команда для всех операций с маркерами
var MarkerCmd = &cobra.Command{
	Use:   "marker",
	Short: "Управление маркерами",
	Long:  `Просмотр, создание, редактирование и удаление маркеров карты.`,
}

func init() {
	MarkerCmd.AddCommand(ListCmd)
	MarkerCmd.AddCommand(GetCmd)
	MarkerCmd.AddCommand(CreateCmd)
	MarkerCmd.AddCommand(EditCmd)
	MarkerCmd.AddCommand(DeleteCmd)
	MarkerCmd.AddCommand(AtCmd)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("неверный ID маркера: %q", s)
	}
	return id, nil
}
