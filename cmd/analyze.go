package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"codearch/internal/analysis"
	"codearch/internal/exhibit"
	"codearch/internal/logutil"
	"codearch/internal/report"
	"codearch/internal/session"
)

type renderOptions struct {
	exhibit  string
	level    string
	budget   int
	maxChars int
	copy     bool
	out      string
}

var analyzeOpts renderOptions
var analyzeLocal bool

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeLocal, "local", false, "treat the target as a local filesystem path")
	addRenderFlags(analyzeCmd, &analyzeOpts)
}

func addRenderFlags(c *cobra.Command, o *renderOptions) {
	c.Flags().StringVar(&o.exhibit, "exhibit", "", "print a single exhibit (see 'codearch exhibits')")
	c.Flags().StringVar(&o.level, "level", report.LevelFull, "report detail: full|compact|brief")
	c.Flags().IntVar(&o.budget, "budget", 0, "token budget; picks the most detailed level that fits (0 = use --level)")
	c.Flags().IntVar(&o.maxChars, "max-chars", 0, "truncate the report to this many characters (0 = no limit)")
	c.Flags().BoolVar(&o.copy, "copy", false, "copy the report to the clipboard")
	c.Flags().StringVar(&o.out, "out", "", "write the report to a file")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <github-url|path>",
	Short: "Excavate one repository and print the museum report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logutil.LoggerFromViper()
		if err != nil {
			return err
		}
		if _, err := analyzeOpts.validate(); err != nil {
			return err
		}

		sess, st, err := openSession(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		announceLoading(sess)
		state, err := sess.RunAnalysis(cmd.Context(), args[0], analyzeLocal)
		if err != nil {
			return excavationError(args[0], err)
		}
		return analyzeOpts.emit(state.Result, args[0])
	},
}

// announceLoading prints a progress line when the session starts a request.
func announceLoading(sess *session.Session) {
	sess.SetObserver(func(s session.State) {
		if s.Loading {
			fmt.Fprintf(os.Stderr, "Excavating %s ...\n", s.Input)
		}
	})
}

func excavationError(target string, err error) error {
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	if errors.Is(err, analysis.ErrAnalysisFailed) {
		return fmt.Errorf("excavate %s: %w", target, err)
	}
	return err
}

func (o renderOptions) validate() (exhibit.Key, error) {
	switch o.level {
	case report.LevelFull, report.LevelCompact, report.LevelBrief:
	default:
		return "", fmt.Errorf("unknown level %q (want full, compact or brief)", o.level)
	}
	if o.exhibit == "" {
		return "", nil
	}
	return exhibit.Parse(o.exhibit)
}

func (o renderOptions) render(r *analysis.Result, target string) (string, error) {
	k, err := o.validate()
	if err != nil {
		return "", err
	}
	var text string
	if k != "" {
		text = report.Exhibit(r, k)
	} else {
		b := report.NewBuilder(target)
		reports := b.Build(r)
		if o.budget > 0 {
			_, text = b.BestFit(reports, o.budget)
		} else {
			text = reports[o.level]
		}
	}
	return clip(text, o.maxChars), nil
}

func (o renderOptions) emit(r *analysis.Result, target string) error {
	text, err := o.render(r, target)
	if err != nil {
		return err
	}

	if o.copy {
		if err := clipboard.WriteAll(text); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not copy to clipboard: %v\n", err)
		} else {
			fmt.Println("Report copied to clipboard!")
		}
	}

	if o.out != "" {
		outPath := o.out
		if !filepath.IsAbs(outPath) {
			dir, _ := os.Getwd()
			outPath = filepath.Join(dir, outPath)
		}
		if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		fmt.Printf("Report written to %s\n", outPath)
	}

	if !o.copy && o.out == "" {
		fmt.Println(strings.TrimRight(text, "\n"))
	}
	return nil
}

func clip(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return string(r[:max]) + "\n..."
}
