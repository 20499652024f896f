package cli

import (
	"fmt"
	"os"

	"trackr/internal/store"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *options) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login USERNAME",
		Short: "Exchange a password for a bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password (or %s) is required", EnvPassword)
			}
			token, err := opts.client(cmd).Login(cmd.Context(), args[0], password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", os.Getenv(EnvPassword), "password")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := opts.session(cmd)
			if err != nil {
				return err
			}
			return opts.finish(cmd, s, nil)
		},
	}
}

func newAddCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add DATE WEIGHT",
		Short: "Record the weight for a date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := opts.toKg(args[1])
			if err != nil {
				return err
			}
			s, creds, err := opts.session(cmd)
			if err != nil {
				return err
			}
			s.ToggleEntryModal()
			if err := s.AddWeightEntry(cmd.Context(), store.AddEntryRequest{
				Credentials: creds, Date: args[0], Weight: weight,
			}); err != nil {
				return err
			}
			return opts.finish(cmd, s, func(st store.State) bool { return st.AddLoading })
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete DATE",
		Short: "Remove the entry for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, creds, err := opts.session(cmd)
			if err != nil {
				return err
			}
			s.ShowDeleteModal()
			if err := s.DeleteWeightEntry(cmd.Context(), store.DeleteEntryRequest{
				Credentials: creds, Date: args[0],
			}); err != nil {
				return err
			}
			return opts.finish(cmd, s, func(st store.State) bool { return st.DeleteLoading })
		},
	}
}

func newModifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "modify DATE WEIGHT",
		Short: "Change the weight recorded for a date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := opts.toKg(args[1])
			if err != nil {
				return err
			}
			s, creds, err := opts.session(cmd)
			if err != nil {
				return err
			}
			// The entry dialog is the delete modal.
			s.ShowDeleteModal()
			if err := s.ModifyWeightEntry(cmd.Context(), store.ModifyEntryRequest{
				Credentials: creds, Date: args[0], Weight: weight,
			}); err != nil {
				return err
			}
			return opts.finish(cmd, s, func(st store.State) bool { return st.SaveLoading })
		},
	}
}
