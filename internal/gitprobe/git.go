package gitprobe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var ErrNoCommits = errors.New("no git commits found")

type Commit struct {
	Hash    string    `json:"hash" yaml:"hash"`
	Subject string    `json:"subject" yaml:"subject"`
	Author  string    `json:"author" yaml:"author"`
	Date    time.Time `json:"date" yaml:"date"`
}

func (c Commit) Short() string {
	if len(c.Hash) > 8 {
		return c.Hash[:8]
	}
	return c.Hash
}

func (c Commit) String() string {
	return fmt.Sprintf("[%s] %s (by %s, %s)", c.Short(), c.Subject, c.Author, c.Date.Local().Format("2006-01-02 15:04"))
}

// LatestCommit reads HEAD of the repository at dir.
func LatestCommit(ctx context.Context, dir string) (*Commit, error) {
	commits, err := Log(ctx, dir, 1)
	if err != nil {
		return nil, err
	}
	return &commits[0], nil
}

func Log(ctx context.Context, dir string, max int) ([]Commit, error) {
	args := []string{"log", "--no-decorate"}
	if max > 0 {
		args = append(args, fmt.Sprintf("-n%d", max))
	}
	args = append(args, "--format=%H|||%s|||%an|||%ai")

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}

	logOutput := strings.TrimSpace(string(out))
	if logOutput == "" {
		return nil, ErrNoCommits
	}

	var commits []Commit
	for _, line := range strings.Split(logOutput, "\n") {
		c, ok := parseLine(line)
		if !ok {
			continue
		}
		commits = append(commits, c)
	}
	if len(commits) == 0 {
		return nil, ErrNoCommits
	}
	return commits, nil
}

func parseLine(line string) (Commit, bool) {
	parts := strings.SplitN(line, "|||", 4)
	if len(parts) < 4 {
		return Commit{}, false
	}
	c := Commit{Hash: parts[0], Subject: parts[1], Author: parts[2]}
	if t, err := time.Parse("2006-01-02 15:04:05 -0700", strings.TrimSpace(parts[3])); err == nil {
		c.Date = t
	}
	return c, true
}
