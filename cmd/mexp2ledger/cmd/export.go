package cmd

import (
	"bufio"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/username/mexp2ledger/pkg/config"
	"github.com/username/mexp2ledger/pkg/db"
	"github.com/username/mexp2ledger/pkg/ledger"
	"github.com/username/mexp2ledger/pkg/mapping"
)

var (
	excludeFiles []string
	mappingFile  string
	outputFile   string
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export [backup-file]",
	Short: "Convert the backup to ledger text",
	Long: `Convert a MyExpenses backup database to ledger text.

This command:
1. Loads accounts, categories and payees from the backup
2. Streams transactions ordered by date, parents before postings
3. Merges split postings sharing a timestamp into one entry
4. Renders entries grouped by year to standard output

Transactions whose reference hash appears in an exclusion file are
dropped, which makes re-imports against an existing ledger idempotent.

Example:
  mexp2ledger export BACKUP > ledger.dat
  mexp2ledger export --exclude ledger.dat BACKUP >> ledger.dat`,
	Args: cobra.MaximumNArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringArrayVar(&excludeFiles, "exclude", nil, "exclusion-list file (repeatable)")
	exportCmd.Flags().StringVar(&mappingFile, "mapping", "", "YAML label-mapping file")
	exportCmd.Flags().StringVar(&outputFile, "output", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) {
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

	catalog, err := db.LoadCatalog(conn)
	exitOnError(err, "failed to load accounts")

	payees, err := db.LoadPayees(conn)
	exitOnError(err, "failed to load payees")

	paths := excludeFiles
	if len(paths) == 0 {
		paths = cfg.ExcludeFiles
	}
	exclusions, err := ledger.LoadExclusions(paths)
	exitOnError(err, "failed to load exclusions")
	slog.Debug("Loaded exclusions", "count", len(exclusions))

	mapPath := mappingFile
	if mapPath == "" {
		mapPath = cfg.MappingPath
	}
	var overlay *mapping.Mapping
	if mapPath != "" {
		overlay, err = mapping.Load(mapPath)
		exitOnError(err, "failed to load label mapping")
	}
	resolver := mapping.Wrap(catalog, overlay)

	var out io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		exitOnError(err, "failed to create output file")
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)

	rows, err := db.OpenRows(conn)
	exitOnError(err, "failed to read transactions")
	defer rows.Close()

	extractor := ledger.NewExtractor(rows, resolver, payees, exclusions, slog.Default())
	merger := ledger.NewMerger(extractor)
	renderer := ledger.NewRenderer(w)

	err = renderer.Run(merger)
	exitOnError(err, "conversion failed")

	exitOnError(w.Flush(), "failed to write output")
}
