package marker

import (
	"fmt"

	"noisemap/cmd/client/cmd/cli"

	"github.com/spf13/cobra"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить маркер",
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

		if err := rt.Sync.DeleteMarker(cmd.Context(), id); err != nil {
			return fmt.Errorf("ошибка удаления маркера: %w", err)
		}

		rt.Success("Маркер %d удален", id)
		return nil
	},
}
