package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codearch/internal/exhibit"
)

func init() {
	rootCmd.AddCommand(exhibitsCmd)
}

var exhibitsCmd = &cobra.Command{
	Use:   "exhibits",
	Short: "List museum exhibits in walking order",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-3s %-20s %-16s %s\n", "#", "KEY", "LABEL", "TITLE")
		fmt.Println("──────────────────────────────────────────────────────────────────────────")
		for i, p := range exhibit.ListProfiles() {
			fmt.Printf("%-3d %-20s %-16s %s %s\n", i+1, p.Key, p.Label, p.Icon, p.Title)
		}
	},
}
