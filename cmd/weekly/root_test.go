package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// décodeur zstd démarré à l'initialisation de parquet-go
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/klauspost/compress/zstd.(*blockDec).startDecoder"))
}

// execute lance la commande racine avec un répertoire de données temporaire
func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dataDir, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// ====================
// Tests des commandes
// ====================

// TestWeekCmd vérifie l'affichage de la semaine d'une date
func TestWeekCmd(t *testing.T) {
	out, err := execute(t, t.TempDir(), "week", "--date", "2024-03-12")
	require.NoError(t, err)
	assert.Equal(t, "Week 10 (2024-03-09 to 2024-03-15)\n", out)
}

// TestWeekCmd_InvalidDate vérifie le rejet d'une date illisible
func TestWeekCmd_InvalidDate(t *testing.T) {
	_, err := execute(t, t.TempDir(), "week", "--date", "12/03/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

// TestRootCmd_InvalidWorkers vérifie que la surcharge de flag passe par la validation
func TestRootCmd_InvalidWorkers(t *testing.T) {
	_, err := execute(t, t.TempDir(), "--workers", "0", "week")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers must be >= 1")
}

// TestStageCmd vérifie la copie d'un upload dans l'arborescence raw
func TestStageCmd(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	src := filepath.Join(t.TempDir(), "amazon_sales.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	out, err := execute(t, dataDir, "stage", "--type", "sales", "--brand", "Rivolta", "--week", "5", src)
	require.NoError(t, err)

	want := filepath.Join(dataDir, "raw", "sales", "Week 5", "Rivolta", "amazon_sales.xlsx")
	assert.Equal(t, want+"\n", out)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

// TestStageCmd_RequiresFiles vérifie qu'au moins un fichier est demandé
func TestStageCmd_RequiresFiles(t *testing.T) {
	_, err := execute(t, t.TempDir(), "stage", "--type", "sales")
	require.Error(t, err)
}

// TestRunCmd_MissingMaster vérifie qu'un run sans master échoue et affiche le statut
func TestRunCmd_MissingMaster(t *testing.T) {
	out, err := execute(t, t.TempDir(), "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load master")
	assert.True(t, strings.Contains(out, "error"), "report should show error status, got %q", out)
}

// TestSummaryCmd_NoFacts vérifie l'erreur sans fait hebdomadaire
func TestSummaryCmd_NoFacts(t *testing.T) {
	_, err := execute(t, t.TempDir(), "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no weekly facts")
}

// TestExportCmd_UnknownFormat vérifie le rejet d'un format inconnu
func TestExportCmd_UnknownFormat(t *testing.T) {
	_, err := execute(t, t.TempDir(), "export", "--format", "xml")
	require.Error(t, err)
}

// TestPublishCmd_RequiresDSN vérifie qu'une publication sans DSN est refusée
func TestPublishCmd_RequiresDSN(t *testing.T) {
	t.Setenv("WEEKLY_WAREHOUSE_DSN", "")
	_, err := execute(t, t.TempDir(), "publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn is required")
}
