package commands

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/teranos/crossview/logger"
	"github.com/teranos/crossview/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, dbPath string, port, records int) {
	info := version.Get()

	pterm.DefaultBigText.WithLetters(pterm.NewLettersFromString("crossview")).Render()

	rows := pterm.TableData{
		{"Version", fmt.Sprintf("%s (commit %s)", info.Version, info.Short())},
		{"Built", info.BuildTime},
		{"Verbosity", logger.LevelName(verbosity)},
		{"Database", dbPath},
		{"Records", fmt.Sprintf("%d", records)},
		{"Port", fmt.Sprintf("%d (next free port if taken)", port)},
	}
	pterm.DefaultTable.WithData(rows).Render()

	if records == 0 {
		pterm.Warning.Println("No transactions loaded; panels will be empty")
	}
	pterm.Info.Println("Press Ctrl+C to stop")
}
