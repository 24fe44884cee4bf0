package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/garrettladley/shopsync/internal/signature"
)

const envWebhookSecret = "SHOPIFY_WEBHOOK_SECRET"

func signCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign FILE",
		Short: "Print the webhook signature of a payload",
		Long:  "Prints the base64 HMAC-SHA256 of FILE's exact bytes, suitable for the " + signature.Header + " header. Use - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv(envWebhookSecret)
			}
			if secret == "" {
				return errors.New("--secret or " + envWebhookSecret + " is required")
			}

			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), signature.NewVerifier(secret).Sign(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "webhook secret (defaults to $"+envWebhookSecret+")")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
