package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gruvah/kickbridge/pkg/framework/param"
	"github.com/gruvah/kickbridge/pkg/midi"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List the declared parameters and the derived slot labels",
	RunE:  runParams,
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C1A")).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func formatRange(p *param.Parameter) string {
	if p.Kind == param.KindChoice {
		return fmt.Sprint(p.Options)
	}
	return strconv.FormatFloat(p.Min, 'g', -1, 64) + " .. " + strconv.FormatFloat(p.Max, 'g', -1, 64)
}

func runParams(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "NAME", "KIND", "RANGE", "DEFAULT", "VALUE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, p := range s.plugin.Parameters().All() {
		t.Row(p.ID, p.Name, p.Kind.String(), formatRange(p), p.FormatValue(p.DefaultValue), p.Text())
	}

	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			t.Width(w)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, t.Render())
	for slot, label := range s.plugin.Labels() {
		note := s.plugin.Pitch(slot + 1)
		fmt.Fprintf(out, "slot %d: %s (midi %d, %.2f Hz)\n", slot+1, label, note, midi.NoteToFrequency(note, 0))
	}
	return nil
}
