package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codearch/internal/config"
	"codearch/internal/logutil"
	"codearch/internal/tui"
)

func init() {
	rootCmd.AddCommand(exploreCmd)
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Open the interactive museum (default)",
	RunE:  runExplore,
}

func runExplore(cmd *cobra.Command, args []string) error {
	logger, closer, err := logutil.FileLogger(logutil.LoggerConfigFromViper(), config.LogFile(viper.GetViper()))
	if err != nil {
		return err
	}
	defer closer.Close()

	sess, st, err := openSession(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	m := tui.NewModel(sess, tui.WithContext(cmd.Context()))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run explorer: %w", err)
	}
	return nil
}
