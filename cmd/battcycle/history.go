package main

import (
	"errors"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/battcycle/battcycle/pkg/client"
	"github.com/battcycle/battcycle/pkg/config"
	"github.com/battcycle/battcycle/pkg/history"
)

// NewHistoryCommand .
func NewHistoryCommand() *cobra.Command {
	limit := 20

	cmd := &cobra.Command{
		Use:     "history",
		GroupID: gBasic,
		Short:   "Show recent battery readings",
		Long: `Show recent battery readings, newest first.

Readings come from the running daemon, or straight from the history database
when the daemon is not running.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			readings, err := client.NewClient(unixSocketPath).GetHistory(limit)
			if errors.Is(err, client.ErrDaemonNotRunning) {
				readings, err = readLocalHistory(limit)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			cmd.SetOut(w)
			cmd.Println("TIME\tCHARGE\tHEALTH\tCYCLES\tCHARGING ALLOWED")
			for _, r := range readings {
				cmd.Printf("%s\t%s\t%s\t%s\t%s\n",
					r.Timestamp.Local().Format("2006-01-02 15:04:05"),
					plainFloat(r.Percentage),
					plainFloat(r.Health),
					plainInt(r.Battery.CycleCount),
					bool2Text(r.ChargingEnabled),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", limit, "number of readings to show")

	return cmd
}

func readLocalHistory(limit int) ([]history.Reading, error) {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return nil, err
	}

	store, err := history.Open(conf.HistoryDB())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.Recent(limit)
}

func plainFloat(p *float64) string {
	if p == nil {
		return "-"
	}
	return formatFloat(*p)
}

func plainInt(p *int) string {
	if p == nil {
		return "-"
	}
	return formatInt(*p)
}
