package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/proposal-desk/internal/checklist"
	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/contract"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checklistYAML(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "    - key: passo_%d\n      label: Passo %d\n", i, i)
	}
	return b.String()
}

func TestParseWorkflow(t *testing.T) {
	doc := "checklists:\n  refin:\n" + checklistYAML(9) + `number_patterns:
  solicitacao_interna:
    - expr: '\d{3}-\d{3}'
      example: 123-456
`
	wf, err := ParseWorkflow(strings.NewReader(doc))
	require.NoError(t, err)

	refin := wf.ChecklistFor(model.TypeRefin)
	require.Len(t, refin, 9)
	assert.Equal(t, "passo_1", refin[0].Key)

	// Untouched types keep their built-in lists.
	assert.NotEmpty(t, wf.ChecklistFor(model.TypeSaqueFacil))

	m, err := wf.Matcher()
	require.NoError(t, err)
	assert.Equal(t, contract.Complete, m.Match("123-456", model.TypeSolicitacaoInterna))
	assert.Equal(t, contract.Incomplete, m.Match("50-12345678900", model.TypeSolicitacaoInterna))
	assert.Equal(t, contract.Complete, m.Match("50-12345678900", model.TypeRefin))
}

func TestParseWorkflow_ReplacesInternalRequestChecklist(t *testing.T) {
	builtin := checklist.DefaultDefinitions()[model.TypeSolicitacaoInterna]

	wf, err := ParseWorkflow(strings.NewReader("checklists:\n  solicitacao_interna:\n" + checklistYAML(8)))
	require.NoError(t, err)

	items := wf.ChecklistFor(model.TypeSolicitacaoInterna)
	require.Len(t, items, 8)
	assert.Equal(t, "Passo 1", items[0].Label)
	assert.NotEqual(t, builtin[0].Label, items[0].Label)
}

func TestParseWorkflowErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown type in checklists", "checklists:\n  consorcio:\n" + checklistYAML(9)},
		{"unknown type in patterns", "number_patterns:\n  consorcio:\n    - expr: '\\d+'\n"},
		{"too few items", "checklists:\n  refin:\n" + checklistYAML(3)},
		{"unknown field", "checklist:\n  refin: []\n"},
		{"malformed yaml", "checklists: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWorkflow(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestParseWorkflowEmptyDocument(t *testing.T) {
	wf, err := ParseWorkflow(strings.NewReader(""))
	require.NoError(t, err)
	m, err := wf.Matcher()
	require.NoError(t, err)
	assert.True(t, m.IsComplete("50-12345678900", model.TypeSaqueFacil))
}

func TestWorkflowMatcherRejectsBadPattern(t *testing.T) {
	wf := &Workflow{NumberPatterns: contract.Patterns{
		model.TypeRefin: {{Expr: "([", Example: "x"}},
	}}
	_, err := wf.Matcher()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadWorkflow(t *testing.T) {
	wf, err := LoadWorkflow("")
	require.NoError(t, err)
	assert.Empty(t, wf.Checklists)

	path := filepath.Join(t.TempDir(), "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("checklists:\n  saque_facil:\n"+checklistYAML(8)), 0o600))

	wf, err = LoadWorkflow(path)
	require.NoError(t, err)
	assert.Len(t, wf.ChecklistFor(model.TypeSaqueFacil), 8)

	_, err = LoadWorkflow(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadSheetsConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "env-sheet")

	viper.Set("sheets.service_account_path", "/etc/propostas/key.json")
	viper.Set("sheets.range", "Convenios!A:H")
	viper.Set("sheets.header_rows", 2)

	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)
	assert.Equal(t, "/etc/propostas/key.json", cfg.ServiceAccountPath)
	assert.Equal(t, "env-sheet", cfg.SpreadsheetID, "env fills what viper leaves empty")
	assert.Equal(t, "Convenios!A:H", cfg.Range)
	assert.Equal(t, 2, cfg.HeaderRows)

	viper.Reset()
	_, err = LoadSheetsConfig()
	assert.Error(t, err, "no authentication configured")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PROPOSTAS_TEST_DIR", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "propostas.db"), ExpandPath("~/propostas.db"))
	assert.Equal(t, "/data/x.db", ExpandPath("$PROPOSTAS_TEST_DIR/x.db"))
}

func TestAppDirs(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Run("xdg variables win", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
		t.Setenv("XDG_DATA_HOME", "~/dados")

		assert.Equal(t, "/etc/xdg/propostas/config.yaml", ConfigFile(ConfigFileName))
		assert.Equal(t, filepath.Join(home, "dados", "propostas", "propostas.db"), DataFile(DBFileName))
	})

	t.Run("home fallbacks", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("XDG_DATA_HOME", "")

		assert.Equal(t, filepath.Join(home, ".config", "propostas"), ConfigDir())
		assert.Equal(t, filepath.Join(home, ".local", "share", "propostas", "propostas.log"), DataFile(LogFileName))
		assert.Equal(t, filepath.Join(home, ".config", "propostas", "sheets-token.json"), ConfigFile(TokenFileName))
	})
}
