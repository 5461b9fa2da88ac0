package cmd

import (
	"fmt"
	"os"

	"noisemap/cmd/client/cmd/audio"
	"noisemap/cmd/client/cmd/cli"
	"noisemap/cmd/client/cmd/marker"
	"noisemap/internal/app/client/config"
	"noisemap/internal/utils/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	jsonOutput bool
	serverURL  string
)

var rootCmd = &cobra.Command{
	Use:   "noisemap",
	Short: "Noisemap - клиент карты шумовых маркеров",
	Long: `Noisemap — клиент для просмотра и редактирования маркеров карты шума.

Маркеры хранятся на сервере; команда watch держит локальную копию
в актуальном состоянии через push-подписку и перерисовывает слой карты.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Overrides{
		EnvFile:       cfgFile,
		ServerAddress: serverURL,
	})
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	log := logger.New(cfg.Env)

	rt := cli.NewRuntime(cfg, log, jsonOutput)
	cmd.SetContext(cli.WithRuntime(cmd.Context(), rt))

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "файл с переменными окружения (.env)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера (host:port)")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(marker.MarkerCmd)
	rootCmd.AddCommand(audio.AudioCmd)
}
