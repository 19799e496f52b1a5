/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "webframe",
	Short: "Bridge a render surface, a scripting host, and background workers",
	Long: "WebFrame runs an in-process bridge: a render surface emits IPC requests,\n" +
		"an embedded JavaScript handler answers them with scripts, and background\n" +
		"goroutines exchange messages with the host over an unbounded channel fabric.",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
