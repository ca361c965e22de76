// Package main implements the aiebu-asm CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aiebu-asm",
	Short: "Control-code assembler for tiled AI-engine accelerators",
	Long:  "aiebu-asm walks instruction and control-packet streams, binds external-buffer metadata, and emits a relocatable object for the runtime loader.",
}

func main() {
	rootCmd.AddCommand(assembleCmd)

	rootCmd.PersistentFlags().String("config", "", "path to aiebu.toml (defaults to built-in tunables if absent)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
