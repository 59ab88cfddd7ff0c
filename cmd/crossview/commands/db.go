package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/crossview/am"
	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/db"
	"github.com/teranos/crossview/display"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the crossview transaction database",
	Long: `db - Manage the crossview transaction database

Examples:
  crossview db migrate                 # Apply pending migrations
  crossview db stats                   # Show dataset statistics
  crossview db stats --db-path tx.db   # Inspect another database`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dataset statistics",
	Long:  "Display transaction counts and the size of the day/city/state index the panels share",
	RunE:  runDbStats,
}

var dbPathFlag string

func init() {
	DbCmd.PersistentFlags().StringVar(&dbPathFlag, "db-path", "", "Custom database path (overrides config)")
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
	dbStatsCmd.Flags().BoolP("json", "j", false, "Output statistics as JSON")
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	path := resolveDatabasePath(cfg, dbPathFlag)

	database, err := openDatabase(path)
	if err != nil {
		return err
	}
	defer database.Close()

	versions, err := db.AppliedVersions(database)
	if err != nil {
		return err
	}
	pterm.Success.Printf("%s is at schema %s (%d migrations applied)\n", path, last(versions), len(versions))
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	path := resolveDatabasePath(cfg, dbPathFlag)

	database, err := openDatabase(path)
	if err != nil {
		return err
	}
	defer database.Close()

	data, err := loadDataset(contextOrBackground(cmd), cfg, database)
	if err != nil {
		return err
	}

	s := statsOf(path, data)
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), s)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database Statistics\n")
	fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Fprintf(out, "Database Path:  %s\n", s.Path)
	fmt.Fprintf(out, "Transactions:   %d\n", s.Records)
	fmt.Fprintf(out, "Cities:         %d\n", s.Cities)
	fmt.Fprintf(out, "Days:           %d\n", s.Days)
	if s.Days > 0 {
		fmt.Fprintf(out, "First Day:      %s\n", s.FirstDay)
		fmt.Fprintf(out, "Last Day:       %s\n", s.LastDay)
	}
	return nil
}

// DatasetStats summarizes a loaded dataset for db stats
type DatasetStats struct {
	Path     string `json:"path"`
	Records  int    `json:"records"`
	Cities   int    `json:"cities"`
	Days     int    `json:"days"`
	FirstDay string `json:"first_day,omitempty"`
	LastDay  string `json:"last_day,omitempty"`
}

func statsOf(path string, d *dataset.Dataset) DatasetStats {
	idx := d.Index()
	days := idx.Days()
	s := DatasetStats{
		Path:    path,
		Records: d.Len(),
		Cities:  len(idx.CityToDays),
		Days:    len(days),
	}
	if len(days) > 0 {
		s.FirstDay = days[0].ISO()
		s.LastDay = days[len(days)-1].ISO()
	}
	return s
}

func last(versions []string) string {
	if len(versions) == 0 {
		return "none"
	}
	return versions[len(versions)-1]
}
