package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/unipilot-backend/internal/modules/roadmap"
)

func newTreeCmd(app *App) *cobra.Command {
	var (
		topicFieldID uint
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print a stored roadmap as a tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := app.Roadmaps.Get(cmd.Context(), topicFieldID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			fmt.Fprintf(out, "%s (roadmap %d)\n", view.Roadmap.Name, view.Roadmap.ID)
			writeTree(out, view.Roots)
			return nil
		},
	}

	cmd.Flags().UintVar(&topicFieldID, "topic-field", 0, "Topic field id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the API view as JSON")
	_ = cmd.MarkFlagRequired("topic-field")
	return cmd
}

type treeFrame struct {
	node  *roadmap.TreeNode
	depth int
}

func writeTree(w io.Writer, roots []*roadmap.TreeNode) {
	stack := make([]treeFrame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, treeFrame{node: roots[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := f.node
		marker := ""
		if n.IsCareerGoal {
			marker = " *"
		}
		fmt.Fprintf(w, "%s- [%s] %s (semester %d)%s\n", strings.Repeat("  ", f.depth), n.ItemType, n.Title, n.Semester, marker)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, treeFrame{node: n.Children[i], depth: f.depth + 1})
		}
	}
}
