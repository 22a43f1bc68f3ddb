package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codearch/internal/config"
	"codearch/internal/logutil"
	"codearch/internal/replay"
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().String("dir", "", "directory of recorded results named <repo-name>.json")
	replayCmd.Flags().String("listen", config.DefaultReplay, "listen address")
	_ = viper.BindPFlag("replay.listen", replayCmd.Flags().Lookup("listen"))
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Serve recorded excavations on the analysis service API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logutil.LoggerFromViper()
		if err != nil {
			return err
		}

		dir := flagOrViperString(cmd, "dir", "replay.dir")
		if dir == "" {
			return fmt.Errorf("replay needs --dir (or replay.dir in config)")
		}
		dir = config.ExpandHome(dir)
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			return fmt.Errorf("replay dir %s is not a directory", dir)
		}
		listen := config.ReplayListen(viper.GetViper())

		fmt.Fprintf(os.Stderr, "Replaying %s on http://%s/api\n", dir, listen)
		return replay.Serve(cmd.Context(), logger, listen, replay.DirSource{Dir: dir})
	},
}
