package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/notify"
	"github.com/spf13/cobra"
)

func pricesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Manage interview prices",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Insert default prices for types without one",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdown(a)

			return a.Prices.SeedDefaults(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the current prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdown(a)

			for _, t := range model.InterviewTypes {
				p, err := a.Prices.GetPrice(cmd.Context(), t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", t, notify.FormatPrice(p.Amount, p.Currency))
			}
			return nil
		},
	})

	var currency string
	set := &cobra.Command{
		Use:     "set <type> <amount>",
		Short:   "Set the price of an interview type",
		Example: "  s30mocks prices set DSA 1200 --as admin@s30mocks.com",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdown(a)

			actor, err := actorFromFlags(cmd, a)
			if err != nil {
				return err
			}
			if !actor.IsAdmin() {
				return fmt.Errorf("only admins can change prices")
			}

			p, err := a.Prices.SetPrice(cmd.Context(), model.InterviewType(args[0]), amount, currency, actor.UserID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s now costs %s\n", p.InterviewType, notify.FormatPrice(p.Amount, p.Currency))
			return nil
		},
	}
	set.Flags().StringVar(&currency, "currency", model.DefaultCurrency, "ISO 4217 currency code")
	cmd.AddCommand(set)

	return cmd
}

// parseAmount turns "1200" or "1200.50" into minor units
func parseAmount(s string) (int64, error) {
	whole, frac, hasFrac := strings.Cut(strings.TrimSpace(s), ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	var minor int64
	if hasFrac {
		frac += strings.Repeat("0", 2-len(frac))
		minor, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}

	return units*100 + minor, nil
}
