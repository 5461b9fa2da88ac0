package marker

import (
	"fmt"

	"noisemap/cmd/client/cmd/cli"
	"noisemap/internal/domain/marker"

	"github.com/spf13/cobra"
)

var (
	createLon   float64
	createLat   float64
	createTitle string
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать маркер",
	Long: `Создает пустой маркер в указанной точке.

Пример:
  noisemap marker create --lon 37.6173 --lat 55.7558 --title "Кафе"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		m := marker.Marker{
			Position: marker.Position{Lon: createLon, Lat: createLat},
			Type:     marker.TypeEmpty,
		}
		if cmd.Flags().Changed("title") {
			m.Title = marker.StrPtr(createTitle)
		}
		if err := m.Validate(); err != nil {
			return err
		}

		id, err := rt.Sync.CreateMarker(cmd.Context(), m)
		if err != nil {
			return fmt.Errorf("ошибка создания маркера: %w", err)
		}

		if rt.JSON {
			return rt.PrintJSON(map[string]int{"id": id})
		}
		rt.Success("Маркер создан, ID: %d", id)
		return nil
	},
}

func init() {
	CreateCmd.Flags().Float64Var(&createLon, "lon", 0, "долгота")
	CreateCmd.Flags().Float64Var(&createLat, "lat", 0, "широта")
	CreateCmd.Flags().StringVar(&createTitle, "title", "", "название")
	_ = CreateCmd.MarkFlagRequired("lon")
	_ = CreateCmd.MarkFlagRequired("lat")
}
