package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/proposal-desk/internal/cli"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/spf13/cobra"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage analyst accounts",
		Long: `Manage the analyst directory kept in the local database.

Profiles "gerente" and "dev" may see every analyst's history and TMA.`,
	}

	cmd.AddCommand(usersAddCmd())
	cmd.AddCommand(usersListCmd())

	return cmd
}

func usersAddCmd() *cobra.Command {
	var (
		name     string
		profile  string
		inactive bool
	)

	cmd := &cobra.Command{
		Use:     "add <login>",
		Short:   "Add or update an analyst",
		Example: `  propostas users add ana.souza --name "Ana Souza" --profile gerente`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := openSQLite(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			user := &model.User{
				Login:    args[0],
				FullName: name,
				Profile:  strings.ToLower(profile),
			}
			if inactive {
				user.Status = "Inativo"
			}

			if err := db.SaveUser(ctx, user); err != nil {
				return err
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Analista %s salvo", args[0])))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&profile, "profile", "", "profile (analista, gerente, dev)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "mark the account inactive")

	return cmd
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List analysts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openSQLite(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			users, err := db.ListUsers(ctx)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				cmd.Println(cli.SubtitleStyle.Render("Nenhum analista cadastrado."))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join([]string{
				cli.TableHeaderStyle.Render("LOGIN"),
				cli.TableHeaderStyle.Render("NOME"),
				cli.TableHeaderStyle.Render("PERFIL"),
				cli.TableHeaderStyle.Render("STATUS"),
			}, "\t"))
			for _, u := range users {
				status := cli.SuccessStyle.Render(u.Status)
				if !u.IsActive() {
					status = cli.SubtleStyle.Render(u.Status)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cli.InfoStyle.Render(u.Login), u.FullName, u.Profile, status)
			}
			return w.Flush()
		},
	}
}
