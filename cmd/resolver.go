package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	conflictStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555"))
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD"))
)

// promptResolver is the interactive suspension point entered when a merge
// conflicts. It blocks the (strictly serial) merge execution until the user
// reports the working tree as resolved or abandons the file.
type promptResolver struct {
	in *bufio.Reader
}

func newPromptResolver() *promptResolver {
	return &promptResolver{in: bufio.NewReader(os.Stdin)}
}

func (p *promptResolver) Resolve(path string, conflicts []string) (bool, error) {
	fmt.Println(conflictStyle.Render(fmt.Sprintf("Merge conflict while applying %s", path)))
	fmt.Println("Conflicted files:")
	for _, c := range conflicts {
		fmt.Printf("  %s\n", pathStyle.Render(c))
	}

	for {
		fmt.Print("Resolve the conflicts in another terminal, then type 'done' to continue or 'abort' to skip this file: ")
		line, err := p.in.ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("failed to read resolution answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "done":
			return true, nil
		case "abort":
			return false, nil
		}
	}
}
