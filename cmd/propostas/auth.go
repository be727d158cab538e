package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/proposal-desk/internal/cli"
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/config"
	"github.com/Veraticus/proposal-desk/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize read access to the catalog spreadsheet",
		Long: `Run the Google OAuth2 flow and store the refresh token in the config file.

A service account (sheets.service_account_path) needs no authorization.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 client ID")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret")
	cmd.Flags().Int("port", 8080, "local port for the OAuth2 callback")
	cmd.Flags().Bool("force", false, "ignore the saved token and authorize again")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")

	// Override with flags if provided
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}

	// Check for environment variables as fallback
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return common.NewUserError(
			"Credenciais OAuth2 ausentes. Configure sheets.client_id e sheets.client_secret ou use --client-id e --client-secret",
			common.ErrMissingConfig)
	}

	tokenFile := config.ConfigFile(config.TokenFileName)
	port, _ := cmd.Flags().GetInt("port")
	force, _ := cmd.Flags().GetBool("force")

	common.LogInfo("Starting Google Sheets authentication", common.Fields{"token_file": tokenFile})

	oauthCfg := sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
		CallbackPort: port,
	}
	authenticate := sheets.GetOrCreateToken
	if force {
		authenticate = sheets.AuthenticateOAuth2Interactive
	}
	token, err := authenticate(ctx, oauthCfg)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	viper.Set("sheets.client_id", clientID)
	viper.Set("sheets.client_secret", clientSecret)
	viper.Set("sheets.refresh_token", token.RefreshToken)

	if err := saveConfig(); err != nil {
		common.LogError(err, "Failed to update config file with refresh token", nil)
		cmd.Println(cli.FormatWarning("Não foi possível salvar o refresh token. Adicione ao config.yaml:"))
		cmd.Printf("sheets:\n  refresh_token: %q\n", token.RefreshToken)
		return nil
	}

	cmd.Println(cli.FormatSuccess("Google Sheets autorizado."))
	cmd.Println(cli.FormatInfo(`Rode "propostas catalog sync" para carregar o catálogo.`))
	return nil
}

func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile(config.ConfigFileName)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0750); err != nil {
		return err
	}

	return viper.WriteConfigAs(configFile)
}
