package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simplici0/mountbook/internal/booking"
	"github.com/Simplici0/mountbook/internal/pricing"
)

func quoteCmd(outputJSON *bool) *cobra.Command {
	var selectionPath string
	var tablePath string

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a selection JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if selectionPath == "" {
				return fmt.Errorf("--selection is required")
			}

			raw, err := readInput(cmd, selectionPath)
			if err != nil {
				return err
			}
			var sel pricing.Selection
			if err := json.Unmarshal(raw, &sel); err != nil {
				return fmt.Errorf("decode selection: %w", err)
			}
			if err := booking.ValidateSelection(sel); err != nil {
				return err
			}

			table := pricing.DefaultTable()
			if tablePath != "" {
				rawTable, err := os.ReadFile(tablePath)
				if err != nil {
					return fmt.Errorf("read price table: %w", err)
				}
				if table, err = pricing.ParseTable(rawTable); err != nil {
					return err
				}
			}

			quote := pricing.Calculate(sel, table)
			if *outputJSON {
				return writeJSON(cmd.OutOrStdout(), quote)
			}
			return printQuote(cmd.OutOrStdout(), quote)
		},
	}

	cmd.Flags().StringVar(&selectionPath, "selection", "", "Selection JSON file (- for stdin)")
	cmd.Flags().StringVar(&tablePath, "table", "", "Price table JSON file (defaults to the stock table)")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selection: %w", err)
	}
	return raw, nil
}

func printQuote(out io.Writer, q pricing.Quote) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tITEM\tQTY\tUNIT\tTOTAL")
	for _, c := range q.Breakdown {
		for _, l := range c.Lines {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", c.Name, l.Name, l.Quantity, l.UnitPrice, l.LineTotal)
		}
	}
	fmt.Fprintf(w, "\t\t\tSubtotal\t%s\n", q.Subtotal)
	for _, d := range q.AppliedDiscounts {
		fmt.Fprintf(w, "\t\t\t%s\t-%s\n", d.Name, d.Amount)
	}
	fmt.Fprintf(w, "\t\t\tTotal\t%s\n", q.Total)
	if err := w.Flush(); err != nil {
		return err
	}

	for _, note := range q.ManualReview {
		fmt.Fprintf(out, "manual review: %s\n", note)
	}
	return nil
}
