package marker

import (
	"fmt"

	"noisemap/cmd/client/cmd/cli"
	"noisemap/internal/domain/marker"

	"github.com/spf13/cobra"
)

var (
	editTitle   string
	editType    int
	editLon     float64
	editLat     float64
	editNoTitle bool
)

var EditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Изменить маркер",
	Long: `Загружает маркер, применяет изменения из флагов и сохраняет его целиком.
Неуказанные поля остаются прежними.`,
	Args: cobra.ExactArgs(1),
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

		flags := cmd.Flags()
		if flags.Changed("title") {
			m.Title = marker.StrPtr(editTitle)
		}
		if editNoTitle {
			m.Title = nil
		}
		if flags.Changed("type") {
			m.Type = marker.Type(editType)
		}
		if flags.Changed("lon") {
			m.Position.Lon = editLon
		}
		if flags.Changed("lat") {
			m.Position.Lat = editLat
		}
		if err := m.Validate(); err != nil {
			return err
		}

		if err := rt.Sync.UpdateMarker(cmd.Context(), m); err != nil {
			return fmt.Errorf("ошибка обновления маркера: %w", err)
		}

		if rt.JSON {
			return rt.PrintJSON(marker.ToPayload(m))
		}
		rt.Success("Маркер %d обновлен", id)
		return nil
	},
}

func init() {
	EditCmd.Flags().StringVar(&editTitle, "title", "", "новое название")
	EditCmd.Flags().BoolVar(&editNoTitle, "no-title", false, "удалить название")
	EditCmd.Flags().IntVar(&editType, "type", 0, "тип маркера (0 - пустой, 1 - не проверен, 2 - проверен)")
	EditCmd.Flags().Float64Var(&editLon, "lon", 0, "долгота")
	EditCmd.Flags().Float64Var(&editLat, "lat", 0, "широта")
	EditCmd.MarkFlagsMutuallyExclusive("title", "no-title")
}
