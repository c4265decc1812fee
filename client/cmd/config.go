package cmd

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"source.quilibrium.com/quilibrium/monorepo/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Performs a configuration operation",
}

var printConfigCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(NodeConfig)
		if err != nil {
			return errors.Wrap(err, "print config")
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var createDefaultConfigCmd = &cobra.Command{
	Use:   "create-default",
	Short: "Create a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath()); err == nil {
			return errors.Errorf("%s already exists", configPath())
		}

		defaults := config.Config{}.WithDefaults(configDirectory)
		if err := config.SaveConfig(configDirectory, &defaults); err != nil {
			return err
		}
		Logger.Info("default config written", zap.String("path", configPath()))
		return nil
	},
}

func configPath() string {
	return filepath.Join(configDirectory, config.ConfigFileName)
}

func init() {
	configCmd.AddCommand(printConfigCmd)
	configCmd.AddCommand(createDefaultConfigCmd)
}
