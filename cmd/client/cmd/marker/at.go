package marker

import (
	"fmt"

	"noisemap/cmd/client/cmd/cli"
	"noisemap/internal/app/client/layer"
	"noisemap/internal/domain/marker"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	atLon       float64
	atLat       float64
	atTolerance float64
)

var AtCmd = &cobra.Command{
	Use:   "at",
	Short: "Найти маркеры рядом с точкой",
	Long: `Строит слой карты из текущих маркеров и возвращает те, что попадают
в радиус --radius (метры Web Mercator) от точки, ближайшие первыми.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		markers, err := rt.Sync.FetchAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка маркеров: %w", err)
		}

		l := layer.New("", rt.Log)
		if err := l.Refresh(markers); err != nil {
			return err
		}

		ids, err := l.QueryAt(atLon, atLat, atTolerance)
		if err != nil {
			return err
		}

		byID := lo.KeyBy(markers, func(m marker.Marker) int { return m.ID })
		hits := lo.FilterMap(ids, func(id int, _ int) (marker.Marker, bool) {
			m, ok := byID[id]
			return m, ok
		})

		return rt.PrintMarkers(hits)
	},
}

func init() {
	AtCmd.Flags().Float64Var(&atLon, "lon", 0, "долгота")
	AtCmd.Flags().Float64Var(&atLat, "lat", 0, "широта")
	AtCmd.Flags().Float64Var(&atTolerance, "radius", 30, "радиус поиска, м")
	_ = AtCmd.MarkFlagRequired("lon")
	_ = AtCmd.MarkFlagRequired("lat")
}
