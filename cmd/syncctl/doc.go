package main

import (
	"errors"
	"fmt"

	go_json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/garrettladley/shopsync/internal/storage"
)

func docCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doc KEY",
		Short: "Print a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = closeStore()
			}()

			doc, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no document %q", args[0])
			}
			if err != nil {
				return err
			}

			out, err := go_json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode document: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
