package marker

import (
	"fmt"

	"noisemap/cmd/client/cmd/cli"

	"github.com/spf13/cobra"
)

var GetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Показать маркер",
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

		return rt.PrintMarker(m)
	},
}
