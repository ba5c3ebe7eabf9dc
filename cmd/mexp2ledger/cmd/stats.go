package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/username/mexp2ledger/pkg/config"
	"github.com/username/mexp2ledger/pkg/db"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats [backup-file]",
	Short: "Display backup statistics",
	Long: `Display statistics about the backup database.

Shows:
- Total transactions, split parents/postings and transfer pairs
- Account, category and payee counts
- First and last transaction dates

Example:
  mexp2ledger stats BACKUP`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	backup := cfg.BackupPath
	if len(args) > 0 {
		backup = args[0]
	}

	slog.Debug("Opening backup", "path", backup)
	conn, err := db.Open(backup)
	exitOnError(err, "failed to open backup database")
	defer conn.Close()

	stats, err := db.GetStats(conn)
	exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Backup Statistics ===")
	fmt.Printf("Transactions:    %d\n", stats.Transactions)
	fmt.Printf("Split parents:   %d\n", stats.SplitParents)
	fmt.Printf("Split postings:  %d\n", stats.SplitPostings)
	fmt.Printf("Transfer pairs:  %d\n", stats.TransferPairs)
	fmt.Printf("Accounts:        %d\n", stats.Accounts)
	fmt.Printf("Categories:      %d\n", stats.Categories)
	fmt.Printf("Payees:          %d\n", stats.Payees)

	if !stats.First.IsZero() {
		fmt.Printf("First txn:       %s\n", stats.First.Format("2006-01-02"))
		fmt.Printf("Last txn:        %s\n", stats.Last.Format("2006-01-02"))
	} else {
		fmt.Printf("First txn:       (none)\n")
	}

	fmt.Println()
}
