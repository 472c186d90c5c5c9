package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/config"
	"github.com/jeffleon2/draftea-paymentscore/internal/repository/posgrest"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/spf13/cobra"
)

var Version = "dev"

// ledgerStore is what the commands read from. Settlement batches use it as their archive too.
type ledgerStore interface {
	service.Store
	service.SettlementArchive
}

type storeOpener func() (ledgerStore, error)

func main() {
	if err := newRootCmd(openStore, time.Now).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open storeOpener, now service.Clock) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "paymentscore-cli",
		Short:        "Operator tooling for the payment ledger and settlements",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(balanceCmd(open))
	rootCmd.AddCommand(statementCmd(open))
	rootCmd.AddCommand(reconcileCmd(open))
	rootCmd.AddCommand(summaryCmd(open, now))
	rootCmd.AddCommand(settlementCmd(open, now))

	return rootCmd
}

// openStore connects with the same DB_* environment the service uses.
func openStore() (ledgerStore, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	db, err := cfg.DB.GormConnect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return posgrest.NewStore(db), nil
}
