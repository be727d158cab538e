package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/proposal-desk/internal/config"
	"github.com/Veraticus/proposal-desk/internal/tui"
	"github.com/Veraticus/proposal-desk/internal/tui/themes"
	"github.com/Veraticus/proposal-desk/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Open the proposal review desk",
		Long: `Open the interactive desk with one tab per proposal type and a history tab.

Only one proposal can be in analysis at a time: while a tab holds a proposal,
the other type tabs are locked until it is approved, rejected or cleared.`,
		Example: `  # Review as the analyst in $USER
  propostas review

  # Review as a specific analyst against DynamoDB
  propostas review --analyst ana.souza --backend dynamodb`,
		RunE: runReview,
	}

	cmd.Flags().String("theme", "", "colour theme (default, catppuccin-mocha, light)")
	_ = viper.BindPFlag("ui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runReview(cmd *cobra.Command, _ []string) error {
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

	store, err := openProposalStore(ctx, db)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	catalog, err := openCatalog(ctx, db)
	if err != nil {
		return err
	}

	wf, err := config.LoadWorkflow(viper.GetString("workflow.definitions"))
	if err != nil {
		return err
	}
	matcher, err := wf.Matcher()
	if err != nil {
		return err
	}

	deskCfg := workflow.DeskConfig{
		Store:      store,
		Catalog:    catalog,
		Clock:      time.Now,
		Matcher:    matcher,
		Checklists: wf.Checklists,
		Analyst:    user.Login,
	}

	desk, err := workflow.NewDesk(deskCfg)
	if err != nil {
		return fmt.Errorf("failed to build desk: %w", err)
	}

	return tui.Run(ctx,
		tui.WithDesk(desk),
		tui.WithUser(*user),
		tui.WithTheme(themes.GetTheme(viper.GetString("ui.theme"))),
		tui.WithHistoryLimit(viper.GetInt("ui.history_limit")),
		tui.WithCallTimeout(viper.GetDuration("ui.call_timeout")),
	)
}
