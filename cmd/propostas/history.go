package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/proposal-desk/internal/cli"
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/service"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func historyCmd() *cobra.Command {
	var (
		typeName string
		status   string
		by       string
		from     string
		to       string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List concluded proposals",
		Long: `List concluded proposals, newest first.

Managers and developers may list any analyst; everyone else only sees their own records.`,
		Example: `  # Everything I concluded this month
  propostas history --from 2024-05-01

  # Rejected Refin proposals of one analyst
  propostas history --type refin --status recusada --by ana.souza`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openSQLite(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			user, err := currentUser(ctx, db)
			if err != nil {
				return err
			}

			filter, err := buildRecordFilter(*user, typeName, status, by, from, to, limit)
			if err != nil {
				return err
			}

			store, err := openProposalStore(ctx, db)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListWithFilters(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list proposals: %w", err)
			}

			if len(records) == 0 {
				cmd.Println(cli.SubtitleStyle.Render("Nenhuma proposta encontrada."))
				return nil
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "proposal type (saque_facil, refin, saque_direcionado, solicitacao_interna)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "status (aprovada, recusada)")
	cmd.Flags().StringVar(&by, "by", "", "analyst whose records to list")
	cmd.Flags().StringVar(&from, "from", "", "first conclusion date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last conclusion date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of records")

	return cmd
}

// buildRecordFilter turns the command flags into a store filter, scoping
// viewers without elevated profiles to their own records.
func buildRecordFilter(viewer model.User, typeName, status, by, from, to string, limit int) (service.RecordFilter, error) {
	filter := service.RecordFilter{Limit: limit}

	if typeName != "" {
		t, err := model.ParseProposalType(typeName)
		if err != nil {
			return filter, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
		}
		filter.Type = t
	}

	if status != "" {
		s, err := parseStatus(status)
		if err != nil {
			return filter, err
		}
		filter.Status = s
	}

	start, end, err := parseDateRange(from, to)
	if err != nil {
		return filter, err
	}
	if !start.IsZero() {
		filter.StartDate = &start
	}
	if !end.IsZero() {
		filter.EndDate = &end
	}

	filter.Analyst = by
	if !viewer.SeesAllAnalysts() {
		filter.Analyst = viewer.Login
	}
	return filter, nil
}

func parseStatus(s string) (model.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aprovada", "approved":
		return model.StatusApproved, nil
	case "recusada", "rejected":
		return model.StatusRejected, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", common.ErrInvalidConfig, s)
}

// parseDateRange parses inclusive calendar days in local time. The end is
// moved to the last instant of its day.
func parseDateRange(from, to string) (start, end time.Time, err error) {
	if from != "" {
		start, err = time.ParseInLocation(dateLayout, from, time.Local)
		if err != nil {
			return start, end, fmt.Errorf("%w: invalid --from date %q", common.ErrInvalidConfig, from)
		}
	}
	if to != "" {
		end, err = time.ParseInLocation(dateLayout, to, time.Local)
		if err != nil {
			return start, end, fmt.Errorf("%w: invalid --to date %q", common.ErrInvalidConfig, to)
		}
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("%w: --to is before --from", common.ErrInvalidConfig)
	}
	return start, end, nil
}

func printRecords(out io.Writer, records []model.Record) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join([]string{
		cli.TableHeaderStyle.Render("NÚMERO"),
		cli.TableHeaderStyle.Render("TIPO"),
		cli.TableHeaderStyle.Render("ANALISTA"),
		cli.TableHeaderStyle.Render("STATUS"),
		cli.TableHeaderStyle.Render("CONCLUÍDA"),
		cli.TableHeaderStyle.Render("DURAÇÃO"),
		cli.TableHeaderStyle.Render("CONVÊNIO"),
		cli.TableHeaderStyle.Render("MOTIVO"),
	}, "\t"))

	for _, r := range records {
		reason := ""
		if r.Filters.RejectionReasonID != "" {
			reason = r.Filters.RejectionReasonID + " - " + r.Filters.RejectionReasonDesc
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			cli.InfoStyle.Render(r.Number),
			r.TypeLabel,
			r.Analyst,
			cli.FormatStatus(string(r.Status)),
			r.ConcludedAt.Local().Format("02/01/2006 15:04"),
			r.Duration,
			r.Filters.Agreement,
			cli.SubtleStyle.Render(reason),
		)
	}

	return w.Flush()
}
