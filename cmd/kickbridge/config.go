package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long:  "Print the configuration after defaults, the config file and flags are merged. Use -o to write it to a file.",
	RunE:  runConfig,
}

var configOut string

func init() {
	configCmd.Flags().StringVarP(&configOut, "out", "o", "", "write to this file instead of stdout")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if configOut == "" {
		return cfg.Write(cmd.OutOrStdout())
	}
	f, err := os.Create(configOut)
	if err != nil {
		return err
	}
	if err := cfg.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
