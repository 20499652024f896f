// Package cli is the command-line front end for the weight log. Each command
// drives a store.Store the way the web UI does: open the relevant modal,
// run the workflow, then render the entries and any notification.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"trackr/internal/adapter/remote"
	"trackr/internal/domain"
	"trackr/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Environment variables providing flag defaults.
const (
	EnvServer   = "TRACKR_SERVER"
	EnvUser     = "TRACKR_USER"
	EnvToken    = "TRACKR_TOKEN"
	EnvPassword = "TRACKR_PASSWORD"
)

// ErrNotConfirmed is returned when the server settled a call without a 200,
// leaving the local state unchanged.
var ErrNotConfirmed = errors.New("server did not confirm the change")

type options struct {
	server   string
	user     string
	token    string
	unit     string
	logLevel string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewRootCmd builds the trackr command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "trackr",
		Short:         "Record and review your weight log",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.unit != domain.UnitKg && opts.unit != domain.UnitLb {
				return fmt.Errorf("unit must be %q or %q", domain.UnitKg, domain.UnitLb)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.server, "server", envOr(EnvServer, "http://localhost:8080"), "Remote Weight API base URL")
	pf.StringVar(&opts.user, "user", os.Getenv(EnvUser), "username")
	pf.StringVar(&opts.token, "token", os.Getenv(EnvToken), "bearer token")
	pf.StringVar(&opts.unit, "unit", domain.UnitKg, "display and input unit (kg or lb)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newLoginCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newDeleteCmd(opts),
		newModifyCmd(opts),
	)
	return root
}

func (o *options) logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(o.logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()
}

func (o *options) client(cmd *cobra.Command) *remote.Client {
	return remote.New(o.server, remote.WithLogger(o.logger(cmd.ErrOrStderr())))
}

func (o *options) creds() (store.Credentials, error) {
	if o.user == "" || o.token == "" {
		return store.Credentials{}, fmt.Errorf("--user and --token (or %s/%s) are required", EnvUser, EnvToken)
	}
	return store.Credentials{User: o.user, Token: o.token}, nil
}

// session loads the user's entries into a fresh store. A failed load is
// rendered and returned so no mutation runs against unknown state.
func (o *options) session(cmd *cobra.Command) (*store.Store, store.Credentials, error) {
	creds, err := o.creds()
	if err != nil {
		return nil, creds, err
	}
	s := store.New(o.client(cmd), store.WithLogger(o.logger(cmd.ErrOrStderr())))
	s.GetUserWeightData(cmd.Context(), creds)
	if n := s.Notification(); n.Visible && n.Type == store.NotificationError {
		fmt.Fprintln(cmd.OutOrStdout(), renderNotification(n))
		return nil, creds, errors.New(n.Message)
	}
	return s, creds, nil
}

// toKg converts a weight typed in the display unit.
func (o *options) toKg(arg string) (float64, error) {
	w, err := strconv.ParseFloat(arg, 64)
	if err != nil || w <= 0 {
		return 0, fmt.Errorf("invalid weight %q", arg)
	}
	return domain.ConvertWeight(w, o.unit, domain.UnitKg), nil
}

// finish renders the store and turns a visible error notification or a
// still-set loading flag into a command error.
func (o *options) finish(cmd *cobra.Command, s *store.Store, pending func(store.State) bool) error {
	st := s.Snapshot()
	out := cmd.OutOrStdout()
	if n := st.Notification; n.Visible {
		fmt.Fprintln(out, renderNotification(n))
		if n.Type == store.NotificationError {
			return errors.New(n.Message)
		}
	}
	fmt.Fprintln(out, renderEntries(st.Entries, o.unit))
	if pending != nil && pending(st) {
		return ErrNotConfirmed
	}
	return nil
}
