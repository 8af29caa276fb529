package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"webdesk/pkg/content"
	"webdesk/pkg/session"
)

func addContent(topLevel *cobra.Command, o *options) {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect the content tree.",
	}

	var ids bool
	tree := &cobra.Command{
		Use:   "tree",
		Short: "Print the folders and files the Finder browses.",
		Example: `
webdesk content tree
webdesk content tree --content-file ./content.yaml --ids
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := o.contentTree()
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), t, ids)
			return nil
		},
	}
	tree.Flags().BoolVar(&ids, "ids", false, "show node ids")

	cmd.AddCommand(tree)
	topLevel.AddCommand(cmd)
}

func printTree(out io.Writer, t *content.Tree, ids bool) {
	folder := color.New(color.Bold, color.FgBlue)
	faint := color.New(color.Faint)

	t.Walk(func(n *content.Node, depth int) bool {
		line := strings.Repeat("  ", depth)
		if n.IsFolder() {
			line += folder.Sprint(n.Name + "/")
			if n.ID == t.Home {
				line += faint.Sprint(" (home)")
			}
		} else {
			line += n.Name
			if kind, _, ok := session.ContentFor(n); ok {
				line += faint.Sprintf(" -> %s", kind)
			}
		}
		if ids {
			line += faint.Sprintf("  [%s]", n.ID)
		}
		_, _ = fmt.Fprintln(out, line)
		return true
	})
}
