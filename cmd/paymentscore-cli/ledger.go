package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/spf13/cobra"
)

func balanceCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account]",
		Short: "Print the balance derived from an account's ledger entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			balance, err := service.NewLedgerService(store).GetBalance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], balance.StringFixed(2))
			return nil
		},
	}
}

func statementCmd(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statement [account]",
		Short: "List an account's ledger entries, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := open()
			if err != nil {
				return err
			}
			entries, err := service.NewLedgerService(store).GetStatement(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tTYPE\tAMOUNT\tBALANCE\tREFERENCE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.EntryType,
					e.Amount.StringFixed(2), e.BalanceAfter.StringFixed(2), e.ReferenceID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntP("limit", "n", 50, "Maximum entries, 0 for all")

	return cmd
}

func reconcileCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [account...]",
		Short: "Compare balance snapshots with the summed entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			ledger := service.NewLedgerService(store)

			inconsistent := 0
			for _, account := range args {
				result, err := ledger.Reconcile(cmd.Context(), account)
				if err != nil {
					return err
				}
				state := "OK"
				if !result.Consistent {
					state = "MISMATCH"
					inconsistent++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %-8s summed=%s snapshot=%s entries=%d\n", account, state,
					result.SummedBalance.StringFixed(2), result.SnapshotBalance.StringFixed(2), result.EntryCount)
			}
			if inconsistent > 0 {
				return fmt.Errorf("%d account(s) out of balance", inconsistent)
			}
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
