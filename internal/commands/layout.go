package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"webdesk/pkg/layout"
)

func addLayout(topLevel *cobra.Command, o *options) {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect or reset saved icon positions.",
	}

	var all bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved icon positions of a profile.",
		Example: `
webdesk layout show
webdesk layout show --profile demo
webdesk layout show --all
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if all {
				return printProfiles(out, o.cfg.DataDir)
			}
			snap, err := layout.NewDiskPersister(o.cfg.DataDir, o.cfg.Profile).Load()
			if err != nil {
				return err
			}
			printSnapshot(out, o.cfg.Profile, snap)
			return nil
		},
	}
	show.Flags().BoolVar(&all, "all", false, "list the stored profiles instead")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every saved icon position of a profile.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := layout.NewDiskPersister(o.cfg.DataDir, o.cfg.Profile).Erase(); err != nil {
				return fmt.Errorf("clearing profile %s: %w", o.cfg.Profile, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cleared positions of profile %s\n", o.cfg.Profile)
			return nil
		},
	}

	cmd.AddCommand(show, clearCmd)
	topLevel.AddCommand(cmd)
}

func printProfiles(out io.Writer, dir string) error {
	profiles := layout.Profiles(dir)
	if len(profiles) == 0 {
		_, _ = fmt.Fprintln(out, "no saved profiles")
		return nil
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.AddRow(bold.Sprint("Profile"), bold.Sprint("Desktop"), bold.Sprint("Folders"))
	for _, p := range profiles {
		snap, err := layout.NewDiskPersister(dir, p).Load()
		if err != nil {
			return err
		}
		tbl.AddRow(p, len(snap.Desktop), len(snap.Containers))
	}
	_, _ = fmt.Fprintln(out, tbl)
	return nil
}

func printSnapshot(out io.Writer, profile string, snap layout.Snapshot) {
	title := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)

	_, _ = fmt.Fprintln(out, title.Sprintf("Profile %s", profile))
	if snap.Empty() {
		_, _ = fmt.Fprintln(out, faint.Sprint("no saved positions"))
		return
	}

	if len(snap.Desktop) > 0 {
		_, _ = fmt.Fprintln(out, title.Sprint("\nDesktop"))
		_, _ = fmt.Fprintln(out, positionTable(snap.Desktop))
	}
	for _, cid := range snap.ContainerIDs() {
		items := snap.Containers[cid]
		if len(items) == 0 {
			continue
		}
		_, _ = fmt.Fprintln(out, title.Sprint("\n"+cid))
		_, _ = fmt.Fprintln(out, positionTable(items))
	}
}

func positionTable(items map[string]layout.Position) *uitable.Table {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Item"), bold.Sprint("X"), bold.Sprint("Y"))
	for _, id := range sortedKeys(items) {
		p := items[id]
		tbl.AddRow(id, formatCoord(p.X), formatCoord(p.Y))
	}
	tbl.RightAlign(1)
	tbl.RightAlign(2)
	return tbl
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
