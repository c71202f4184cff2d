package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/parley/internal/cli"
	"github.com/spf13/cobra"
)

func newSessionCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored conversations",
		Long:  `List, inspect and remove conversations kept in the session directory or Redis.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := cli.OpenPersistentStores(cmd.Context(), g.cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			ids, err := stores.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No sessions found.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "inspect <session-id>",
		Short: "Print a stored session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := cli.OpenPersistentStores(cmd.Context(), g.cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			state, err := stores.Store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load session %q: %w", args[0], err)
			}
			data, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <session-id>...",
		Short: "Remove stored sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := cli.OpenPersistentStores(cmd.Context(), g.cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			var errs []error
			for _, id := range args {
				if err := stores.Store.Delete(cmd.Context(), id); err != nil {
					errs = append(errs, fmt.Errorf("remove %q: %w", id, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session %q\n", id)
			}
			return errors.Join(errs...)
		},
	})

	return cmd
}
