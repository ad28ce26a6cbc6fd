package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/a1utilityhub/prompt-relay/internal/client"
	"github.com/a1utilityhub/prompt-relay/internal/errors"
	"github.com/a1utilityhub/prompt-relay/internal/gemini"
	"github.com/a1utilityhub/prompt-relay/internal/port"
	"github.com/a1utilityhub/prompt-relay/internal/tui"
)

var (
	promptRelay   string
	promptFile    string
	promptRaw     bool
	promptTimeout time.Duration
)

var promptCmd = &cobra.Command{
	Use:   "prompt <text>",
	Short: "Send a prompt to a running relay",
	Long: `Send a prompt through a running relay and print the model's answer.

Use --file to attach an image or document; it is sent as inlineData with a
MIME type guessed from the file extension. A spinner is shown on stderr while
the model is generating, when stdout is a terminal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrompt,
}

func init() {
	promptCmd.Flags().StringVar(&promptRelay, "relay", port.LocalURL(port.Default), "Relay base URL")
	promptCmd.Flags().StringVarP(&promptFile, "file", "f", "", "Attach a file as inline data")
	promptCmd.Flags().BoolVar(&promptRaw, "raw", false, "Print the raw JSON response")
	promptCmd.Flags().DurationVar(&promptTimeout, "timeout", 2*time.Minute, "Request timeout")
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	if promptTimeout <= 0 {
		return errors.ValidationError("--timeout must be positive")
	}

	var attachment *gemini.InlineData
	if promptFile != "" {
		att, err := client.Attachment(promptFile)
		if err != nil {
			return err
		}
		attachment = att
	}

	c := client.NewHTTP(promptRelay)
	c.HTTP.Timeout = promptTimeout

	out := cmd.OutOrStdout()

	// The spinner goes to stderr, and only when the answer lands on a terminal.
	var spinnerOut io.Writer = io.Discard
	if tui.IsTerminal(out) {
		spinnerOut = cmd.ErrOrStderr()
	}

	text := strings.Join(args, " ")
	body, err := tui.Wait(cmd.Context(), spinnerOut, "Waiting for the model", func(ctx context.Context) ([]byte, error) {
		return c.Prompt(ctx, text, attachment)
	})
	if err != nil {
		return err
	}

	if promptRaw {
		_, err := fmt.Fprintln(out, string(body))
		return err
	}

	resp, err := gemini.ParseResponse(body)
	if err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	answer := resp.Text()
	if answer == "" {
		logWarning("The model returned no text")
		return nil
	}
	_, err = fmt.Fprintln(out, answer)
	return err
}
