package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nbarna/cardsmith/internal/card"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the supported card types",
	RunE:  runTypes,
}

func init() {
	rootCmd.AddCommand(typesCmd)
}

func runTypes(cmd *cobra.Command, args []string) error {
	for _, d := range card.Descriptors() {
		fmt.Printf("%s\n", d.Type)
		fmt.Printf("    %s\n", d.Label)
		fmt.Printf("    shape:   %s\n", d.Shape)
		fmt.Printf("    example: %s\n\n", d.Example)
	}
	return nil
}
