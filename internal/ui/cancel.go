package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

func (a *App) cancelCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel [appointment-id]",
		Short: "Cancel an appointment",
		Long: `Cancel an appointment by its ID. The cancellation is recorded as made
by the session's role (doctor, patient or receptionist).

Example:
  clinicweek cancel 42 --reason "doctor at conference"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := a.loader()
			if err != nil {
				return err
			}

			err = loader.Cancel(context.Background(), args[0], reason)
			switch {
			case errors.Is(err, calendar.ErrAlreadyCanceled):
				fmt.Fprintf(cmd.OutOrStdout(), "Appointment %s was already canceled\n", args[0])
				return nil
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Canceled appointment %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Cancellation reason")
	return cmd
}
