package main

import (
	"fmt"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/spf13/cobra"
)

func summaryCmd(open storeOpener, now service.Clock) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [merchantId]",
		Short: "Summarize a merchant's transactions over a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := periodFlags(cmd, now())
			if err != nil {
				return err
			}

			store, err := open()
			if err != nil {
				return err
			}
			summary, err := service.NewTransactionQueryService(store).GetTransactionSummary(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}

	addPeriodFlags(cmd)

	return cmd
}

func settlementCmd(open storeOpener, now service.Clock) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settlement [merchantId]",
		Short: "Build the pending settlement batch for a merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := periodFlags(cmd, now())
			if err != nil {
				return err
			}

			store, err := open()
			if err != nil {
				return err
			}
			transactions := service.NewTransactionQueryService(store)
			settlements := service.NewSettlementService(transactions, store, store)
			settlements.Now = now
			batch, err := settlements.BatchSettlement(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			return printJSON(cmd, batch)
		},
	}

	addPeriodFlags(cmd)

	return cmd
}

func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "Period start, RFC3339 (default: start of today)")
	cmd.Flags().String("to", "", "Period end, RFC3339 (default: now)")
}

func periodFlags(cmd *cobra.Command, now time.Time) (time.Time, time.Time, error) {
	y, m, d := now.Date()
	from, to := time.Date(y, m, d, 0, 0, 0, 0, now.Location()), now

	for name, target := range map[string]*time.Time{"from": &from, "to": &to} {
		raw, _ := cmd.Flags().GetString(name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
		}
		*target = parsed
	}
	return from, to, nil
}
