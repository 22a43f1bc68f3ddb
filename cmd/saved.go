package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"codearch/internal/gitprobe"
	"codearch/internal/logutil"
	"codearch/internal/repocache"
	"codearch/internal/store"
)

var (
	savedOutput string
	savedLocal  bool
	openOpts    renderOptions
)

func init() {
	rootCmd.AddCommand(savedCmd)
	savedCmd.AddCommand(savedShowCmd)
	savedCmd.AddCommand(savedRmCmd)
	savedCmd.AddCommand(savedOpenCmd)
	savedCmd.AddCommand(savedClearCmd)

	savedCmd.PersistentFlags().StringVarP(&savedOutput, "output", "o", "table", "output format: table|yaml|json")
	savedShowCmd.Flags().BoolVar(&savedLocal, "local", false, "the path is a local repository")
	savedRmCmd.Flags().BoolVar(&savedLocal, "local", false, "the path is a local repository")
	addRenderFlags(savedOpenCmd, &openOpts)
}

func openCache() (*repocache.Manager, *store.Store, error) {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return repocache.NewManager(st, logger), st, nil
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List remembered excavations, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, st, err := openCache()
		if err != nil {
			return err
		}
		defer st.Close()

		list := cache.GetAll()
		switch savedOutput {
		case "json", "yaml":
			return printStructured(savedOutput, list)
		case "table":
		default:
			return fmt.Errorf("unknown output format %q", savedOutput)
		}

		if len(list) == 0 {
			fmt.Println("No saved repositories yet — run 'codearch analyze' first")
			return nil
		}

		now := time.Now()
		fmt.Printf("%-3s %-24s %-7s %-16s %s\n", "#", "NAME", "KIND", "ANALYZED", "PATH")
		fmt.Println("─────────────────────────────────────────────────────────────────────────────")
		for i, d := range list {
			fmt.Printf("%-3d %-24s %-7s %-16s %s\n",
				i+1,
				truncateShow(d.Name, 24),
				d.Kind(),
				humanize.RelTime(d.AnalyzedAt, now, "ago", "from now"),
				d.Path,
			)
		}
		return nil
	},
}

var savedShowCmd = &cobra.Command{
	Use:   "show <path-or-url>",
	Short: "Show one remembered excavation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, st, err := openCache()
		if err != nil {
			return err
		}
		defer st.Close()

		d, ok := findSaved(cache.GetAll(), args[0], savedLocal)
		if !ok {
			return fmt.Errorf("repository %q not found in saved list", args[0])
		}

		var commit *gitprobe.Commit
		if d.IsLocal {
			commit, _ = gitprobe.LatestCommit(cmd.Context(), d.Path)
		}

		switch savedOutput {
		case "json", "yaml":
			return printStructured(savedOutput, struct {
				store.RepositoryDescriptor `yaml:",inline"`
				LatestCommit               *gitprobe.Commit `json:"latestCommit,omitempty" yaml:"latestCommit,omitempty"`
			}{d, commit})
		case "table":
		default:
			return fmt.Errorf("unknown output format %q", savedOutput)
		}

		fmt.Printf("Name:     %s\n", d.Name)
		fmt.Printf("Path:     %s\n", d.Path)
		fmt.Printf("Kind:     %s\n", d.Kind())
		fmt.Printf("Analyzed: %s (%s)\n", d.AnalyzedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(d.AnalyzedAt))
		if commit != nil {
			fmt.Printf("HEAD:     %s\n", commit)
		}
		return nil
	},
}

var savedRmCmd = &cobra.Command{
	Use:   "rm <path-or-url>",
	Short: "Forget a remembered excavation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, st, err := openCache()
		if err != nil {
			return err
		}
		defer st.Close()

		before := len(cache.GetAll())
		after := cache.Remove(store.RepositoryDescriptor{Path: args[0], IsLocal: savedLocal})
		if len(after) == before {
			fmt.Printf("%s was not in the saved list\n", args[0])
			return nil
		}
		fmt.Printf("Removed %s (%d remaining)\n", args[0], len(after))
		return nil
	},
}

var savedOpenCmd = &cobra.Command{
	Use:   "open <index>",
	Short: "Re-excavate a remembered repository by its list position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}

		logger, err := logutil.LoggerFromViper()
		if err != nil {
			return err
		}
		sess, st, err := openSession(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		list := sess.SavedRepositories()
		if n < 1 || n > len(list) {
			return fmt.Errorf("index %d out of range (1-%d)", n, len(list))
		}
		d := list[n-1]

		announceLoading(sess)
		state, err := sess.LoadSaved(cmd.Context(), d)
		if err != nil {
			return excavationError(d.Path, err)
		}
		return openOpts.emit(state.Result, d.Path)
	},
}

var savedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every remembered excavation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Clear(); err != nil {
			return fmt.Errorf("clear saved list: %w", err)
		}
		fmt.Println("Saved list cleared")
		return nil
	},
}

func findSaved(list []store.RepositoryDescriptor, path string, isLocal bool) (store.RepositoryDescriptor, bool) {
	key := store.RepositoryDescriptor{Path: path, IsLocal: isLocal}
	for _, d := range list {
		if d.SameKey(key) {
			return d, true
		}
	}
	return store.RepositoryDescriptor{}, false
}

func printStructured(format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		fmt.Print(string(data))
	}
	return nil
}

func truncateShow(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
