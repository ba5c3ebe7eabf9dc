package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/username/mexp2ledger/pkg/config"
	"github.com/username/mexp2ledger/pkg/db"
)

// payeesCmd represents the payees command.
var payeesCmd = &cobra.Command{
	Use:   "payees [backup-file]",
	Short: "List payee names",
	Long: `List every payee display name in the backup, sorted.

Example:
  mexp2ledger payees BACKUP`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPayees,
}

func runPayees(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	backup := cfg.BackupPath
	if len(args) > 0 {
		backup = args[0]
	}

	conn, err := db.Open(backup)
	exitOnError(err, "failed to open backup database")
	defer conn.Close()

	payees, err := db.LoadPayees(conn)
	exitOnError(err, "failed to load payees")

	names := make([]string, 0, len(payees))
	for _, name := range payees {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
}
