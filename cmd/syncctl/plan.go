package main

import (
	"fmt"

	go_json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/garrettladley/shopsync/internal/catalog"
	"github.com/garrettladley/shopsync/internal/mutation"
)

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan FILE",
		Short: "Print the mutation set for a product payload",
		Long:  "Normalizes FILE as a product notification and prints the mutations a delivery would commit. Nothing is written. Use - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			product, err := catalog.Normalize(body)
			if err != nil {
				return err
			}

			out, err := go_json.MarshalIndent(mutation.Plan(product), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode mutation set: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
