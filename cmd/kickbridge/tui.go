package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gruvah/kickbridge/pkg/tui"
)

var (
	loadPath string
	savePath string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Edit the voice slots in the terminal",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&loadPath, "load", "", "state blob to restore before editing")
	tuiCmd.Flags().StringVar(&savePath, "save", "", "write the state captured with 's' to this file on exit")
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if loadPath != "" {
		blob, err := os.ReadFile(loadPath)
		if err != nil {
			return err
		}
		if err := s.plugin.RestoreState(blob); err != nil {
			return err
		}
	}

	// Log lines would tear the alternate screen.
	s.log.SetEnabled(false)
	final, err := tui.Run(s.plugin)
	s.log.SetEnabled(true)
	if err != nil {
		return err
	}

	if savePath != "" && final.Saved() != nil {
		if err := os.WriteFile(savePath, final.Saved(), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", savePath)
	}
	return nil
}
