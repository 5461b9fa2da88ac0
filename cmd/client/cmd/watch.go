package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"noisemap/cmd/client/cmd/cli"
	"noisemap/internal/app/client"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Следить за изменениями маркеров",
	Long: `Загружает маркеры, подписывается на изменения и поддерживает
локальную копию и слой карты в актуальном состоянии до прерывания (Ctrl+C).

Если задан LAYER_PATH, слой GeoJSON перезаписывается после каждого изменения.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := cli.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		app, err := client.New(rt.Config, rt.Log)
		if err != nil {
			return fmt.Errorf("ошибка инициализации приложения: %w", err)
		}

		app.SetListener(func(c client.Change) {
			switch {
			case c.Err != nil:
				rt.Error("%s: %v", describe(c), c.Err)
			default:
				rt.Success("%s, маркеров: %d", describe(c), c.Markers)
			}
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app.Start(ctx)
		rt.Success("Подписка на %s", rt.Config.PushURL())

		<-ctx.Done()
		app.Stop()

		return nil
	},
}

func describe(c client.Change) string {
	if c.Event.Kind == "" {
		return "Загрузка маркеров"
	}
	return c.Event.String()
}
