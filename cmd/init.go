package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codearch/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the state directory, cache database and a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := config.StateDir(viper.GetViper())

		st, err := openStore()
		if err != nil {
			return fmt.Errorf("init failed: %w", err)
		}
		dbPath := st.Path()
		st.Close()

		cfgPath := filepath.Join(dir, config.ConfigFileName)
		defaults := config.Defaults()
		defaults.Server.URL = config.ServerURL(viper.GetViper())
		defaults.StateDir = dir
		wrote, err := config.WriteFile(cfgPath, defaults)
		if err != nil {
			return fmt.Errorf("init failed: %w", err)
		}

		fmt.Printf("Initialized codearch in %s\n", dir)
		fmt.Printf("Cache database at %s\n", dbPath)
		if wrote {
			fmt.Printf("Config written to %s\n", cfgPath)
		} else {
			fmt.Printf("Config already exists at %s, left unchanged\n", cfgPath)
		}
		return nil
	},
}
