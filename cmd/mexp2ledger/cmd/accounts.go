package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/username/mexp2ledger/pkg/config"
	"github.com/username/mexp2ledger/pkg/db"
	"github.com/username/mexp2ledger/pkg/ledger"
)

var activeOnly bool

// accountsCmd represents the accounts command.
var accountsCmd = &cobra.Command{
	Use:   "accounts [backup-file]",
	Short: "List account and category labels",
	Long: `List every asset-account and category label in the backup.

With --active only labels actually referenced by transactions are
listed: asset accounts first, then categories, each group sorted.

Example:
  mexp2ledger accounts BACKUP
  mexp2ledger accounts --active BACKUP`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAccounts,
}

func init() {
	accountsCmd.Flags().BoolVar(&activeOnly, "active", false, "list only accounts used by transactions")
}

func runAccounts(cmd *cobra.Command, args []string) {
	conn, catalog := openCatalog(args)
	defer conn.Close()

	var labels []string
	if activeOnly {
		accountIDs, err := db.ActiveAccountIDs(conn)
		exitOnError(err, "failed to list active accounts")
		catIDs, err := db.ActiveCategoryIDs(conn)
		exitOnError(err, "failed to list active categories")

		var assets, cats []string
		for _, id := range accountIDs {
			label, err := catalog.AssetLabel(id)
			exitOnError(err, "failed to resolve account")
			assets = append(assets, label)
		}
		for _, id := range catIDs {
			label, err := catalog.CategoryLabel(&id)
			exitOnError(err, "failed to resolve category")
			cats = append(cats, label)
		}
		sort.Strings(assets)
		sort.Strings(cats)
		labels = append(assets, cats...)
	} else {
		var err error
		labels, err = catalog.Labels()
		exitOnError(err, "failed to resolve labels")
		sort.Strings(labels)
	}

	for _, label := range labels {
		fmt.Println(label)
	}
}

// openCatalog opens the backup named by args or config and loads its
// catalog. Shared by the listing commands.
func openCatalog(args []string) (*db.Connection, *ledger.Catalog) {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	backup := cfg.BackupPath
	if len(args) > 0 {
		backup = args[0]
	}

	conn, err := db.Open(backup)
	exitOnError(err, "failed to open backup database")

	catalog, err := db.LoadCatalog(conn)
	if err != nil {
		conn.Close()
		exitOnError(err, "failed to load accounts")
	}
	return conn, catalog
}
