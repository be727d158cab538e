package main

import (
	"fmt"

	"github.com/Veraticus/proposal-desk/internal/cli"
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/config"
	"github.com/Veraticus/proposal-desk/internal/contract"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func checkNumberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-number <type> <number>",
		Short: "Validate a contract number against the shapes of a proposal type",
		Example: `  propostas check-number refin 50-12345678900
  propostas check-number "Solicitação Interna" 50-1234567890`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseProposalType(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
			}

			wf, err := config.LoadWorkflow(viper.GetString("workflow.definitions"))
			if err != nil {
				return err
			}
			matcher, err := wf.Matcher()
			if err != nil {
				return err
			}

			switch matcher.Match(args[1], t) {
			case contract.Complete:
				cmd.Println(cli.FormatSuccess(fmt.Sprintf("%s é um número válido para %s", args[1], t.DisplayName())))
			case contract.Untouched:
				cmd.Println(cli.FormatWarning("Número vazio"))
			default:
				cmd.Println(cli.FormatError(matcher.InvalidNumberMessage(t)))
			}
			return nil
		},
	}
}
