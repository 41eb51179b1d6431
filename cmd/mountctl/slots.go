package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/store"
)

type slotsOutput struct {
	Date   string                `json:"date"`
	Reason availability.Reason   `json:"reason"`
	Slots  []availability.Result `json:"slots"`
}

func slotsCmd(outputJSON *bool) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show the bookable slots of a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				return fmt.Errorf("--date is required")
			}

			ctx := cmd.Context()
			cfg, database, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			ev := availability.New(store.New(database),
				availability.WithLocation(loc),
				availability.WithBuffer(cfg.BookingBuffer()),
			)

			slots, reason := ev.DaySlots(ctx, date, cfg.SlotInterval())
			if reason == availability.ReasonInvalidDate {
				return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
			}
			if slots == nil {
				slots = []availability.Result{}
			}

			if *outputJSON {
				return writeJSON(cmd.OutOrStdout(), slotsOutput{Date: date, Reason: reason, Slots: slots})
			}
			return printSlots(cmd.OutOrStdout(), date, reason, slots)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	return cmd
}

func printSlots(out io.Writer, date string, reason availability.Reason, slots []availability.Result) error {
	if len(slots) == 0 {
		_, err := fmt.Fprintf(out, "%s: no slots (%s)\n", date, reason)
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATUS\tREASON")
	for _, s := range slots {
		status := "open"
		if !s.Available {
			status = "taken"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Time, status, s.Reason)
	}
	return w.Flush()
}
