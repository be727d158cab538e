package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/proposal-desk/internal/cli"
	"github.com/Veraticus/proposal-desk/internal/duration"
	"github.com/Veraticus/proposal-desk/internal/service"
	"github.com/spf13/cobra"
)

func tmaCmd() *cobra.Command {
	var (
		by   string
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "tma",
		Short: "Show the average handling time per analyst",
		Long: `Show the average handling time (TMA) of approved and rejected proposals per analyst.

Managers and developers see every analyst; everyone else only sees themselves.`,
		Example: `  propostas tma --from 2024-05-01 --to 2024-05-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, end, err := parseDateRange(from, to)
			if err != nil {
				return err
			}

			db, err := openSQLite(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			user, err := currentUser(ctx, db)
			if err != nil {
				return err
			}

			store, err := openProposalStore(ctx, db)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			q := duration.Query{Start: start, End: end, Viewer: *user, Analyst: by}

			filter := service.RecordFilter{Analyst: q.VisibleAnalyst()}
			if !start.IsZero() {
				filter.StartDate = &start
			}
			if !end.IsZero() {
				filter.EndDate = &end
			}
			records, err := store.ListWithFilters(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list proposals: %w", err)
			}

			rows := duration.ComputeTMA(records, q)
			if len(rows) == 0 {
				cmd.Println(cli.SubtitleStyle.Render("Nenhuma proposta concluída no período."))
				return nil
			}
			return printTMA(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "restrict to one analyst")
	cmd.Flags().StringVar(&from, "from", "", "first conclusion date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last conclusion date (YYYY-MM-DD)")

	return cmd
}

func printTMA(out io.Writer, rows []duration.AnalystTMA) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join([]string{
		cli.TableHeaderStyle.Render("ANALISTA"),
		cli.TableHeaderStyle.Render("PROPOSTAS"),
		cli.TableHeaderStyle.Render("TMA"),
		cli.TableHeaderStyle.Render("TOTAL"),
	}, "\t"))

	overall := duration.AnalystTMA{Analyst: "Geral"}
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			cli.InfoStyle.Render(r.Analyst),
			r.Count,
			duration.Format(r.Average()),
			duration.Format(r.Total),
		)
		overall.Count += r.Count
		overall.Total += r.Total
	}

	if len(rows) > 1 {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			cli.BoldStyle.Render(overall.Analyst),
			overall.Count,
			duration.Format(overall.Average()),
			duration.Format(overall.Total),
		)
	}

	return w.Flush()
}
