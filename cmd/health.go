package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a1utilityhub/prompt-relay/internal/client"
	"github.com/a1utilityhub/prompt-relay/internal/port"
)

var healthRelay string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that a relay is up",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := client.NewHTTP(healthRelay).Healthy()
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		if !ok {
			return fmt.Errorf("relay at %s is not healthy", healthRelay)
		}
		logSuccess("Relay at %s is healthy", healthRelay)
		return nil
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthRelay, "relay", port.LocalURL(port.Default), "Relay base URL")
	rootCmd.AddCommand(healthCmd)
}
