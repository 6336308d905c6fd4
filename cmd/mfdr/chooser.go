package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Danondso/mfdr-sub001/internal/catalog"
	"github.com/Danondso/mfdr-sub001/internal/match"
)

// terminalChooser presents ranked candidates as a table and reads the user's
// pick from the terminal.
type terminalChooser struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalChooser(in io.Reader, out io.Writer) *terminalChooser {
	return &terminalChooser{in: bufio.NewReader(in), out: out}
}

var _ match.Chooser = (*terminalChooser)(nil)

func (c *terminalChooser) Choose(entry catalog.Entry, candidates []match.ScoredCandidate) (match.Choice, error) {
	fmt.Fprintf(c.out, "\n%s\n", entry.String())

	rows := make([][]string, 0, len(candidates))
	for i, scored := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			formatScore(scored.Score),
			scored.Candidate.Path,
		})
	}
	fmt.Fprintln(c.out, renderTable(
		[]string{"#", "Score", "Candidate"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft}))

	for {
		fmt.Fprintf(c.out, "Accept [1-%d], (s)kip, or (r)emove from catalog: ", len(candidates))
		line, err := c.in.ReadString('\n')
		if err != nil {
			return match.Choice{}, fmt.Errorf("read choice: %w", err)
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "", "s", "skip":
			return match.Choice{Kind: match.ChoiceSkip}, nil
		case "r", "remove":
			return match.Choice{Kind: match.ChoiceRemove}, nil
		}
		if pick, err := strconv.Atoi(answer); err == nil && pick >= 1 && pick <= len(candidates) {
			return match.Choice{Kind: match.ChoiceAccept, Index: pick - 1}, nil
		}
		fmt.Fprintln(c.out, "Unrecognized choice.")
	}
}
