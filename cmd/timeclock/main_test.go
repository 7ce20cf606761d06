package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timeclock/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliTestCSV = "Matricule;Nom;Date;Arrivée;Départ\nE1;Awa;06/01/2025;08:15;17:00\nE9;Ghost;06/01/2025;08:00;12:00\n"

// chdir switches the working directory for the rest of the test and restores it
// on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// cliEnv points the CLI at a fresh SQLite file holding one active employee.
func cliEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)

	dbPath := filepath.Join(dir, "timeclock.db")
	for k, v := range map[string]string{
		"DB_DRIVER":                  "sqlite",
		"DB_SQLITE_PATH":             dbPath,
		"STORAGE_BASE_PATH":          filepath.Join(dir, "archive"),
		"JWT_SECRET_KEY":             "cli-test-secret",
		"JWT_ACCESS_EXPIRATION_TIME": "1h",
		"IMPORT_MODE":                "overwrite",
		"IMPORT_INBOX_DIR":           "",
		"LOG_LEVEL":                  "error",
	} {
		t.Setenv(k, v)
	}

	db, err := database.NewSQLiteDB(dbPath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, sqlite.Migrate(context.Background(), db))
	_, err = db.Exec(`INSERT INTO employees (matricule, name, department) VALUES ('E1', 'Awa Diallo', 'Ops')`)
	require.NoError(t, err)

	path := filepath.Join(dir, "clock.csv")
	require.NoError(t, os.WriteFile(path, []byte(cliTestCSV), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportCmd_DryRun(t *testing.T) {
	// Arrange
	cliEnv(t)

	// Act
	out, err := execute(t, "import", "clock.csv")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "(dry-run)")
	assert.Contains(t, out, "Records:   1")
	assert.Contains(t, out, "Matricule 'E9' not found in employee database.")

	records, err := execute(t, "records")
	require.NoError(t, err)
	assert.Contains(t, records, "(0 records)")
}

func TestImportCmd_CommitAndUnmatchedOut(t *testing.T) {
	dir := cliEnv(t)
	unmatchedPath := filepath.Join(dir, "unmatched.csv")

	out, err := execute(t, "import", "clock.csv", "--commit", "--unmatched-out", unmatchedPath)

	require.NoError(t, err)
	assert.Contains(t, out, "committed, overwrite")
	assert.Contains(t, out, "1 unmatched row(s) written")

	content, err := os.ReadFile(unmatchedPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Matricule,"))
	assert.True(t, strings.HasPrefix(lines[1], "E9,"))

	records, err := execute(t, "records", "--matricule", "E1")
	require.NoError(t, err)
	assert.Contains(t, records, "Awa Diallo")
	assert.Contains(t, records, "Late")
	assert.Contains(t, records, "(1 records)")
}

func TestImportCmd_JSON(t *testing.T) {
	cliEnv(t)

	out, err := execute(t, "import", "clock.csv", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"processed_records"`)
	assert.Contains(t, out, `"layout": "legacy"`)
}

func TestImportCmd_Errors(t *testing.T) {
	dir := cliEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("Nom;Heure\nAwa;08:00\n"), 0644))

	_, err := execute(t, "import", "bad.csv")
	require.Error(t, err)
	assert.Equal(t, exitPrecondition, exitCode(err))

	_, err = execute(t, "import", "missing.csv")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, "import", "clock.csv", "--mode", "append")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestUnmatchedCmd_XLSX(t *testing.T) {
	dir := cliEnv(t)
	outPath := filepath.Join(dir, "fix.xlsx")

	out, err := execute(t, "unmatched", "clock.csv", "--out", outPath)

	require.NoError(t, err)
	assert.Contains(t, out, "1 unmatched row(s)")
	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestUnmatchedCmd_NothingToExport(t *testing.T) {
	dir := cliEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "matched.csv"),
		[]byte("Matricule;Date;Arrivée;Départ\nE1;06/01/2025;08:00;17:00\n"), 0644))
	outPath := filepath.Join(dir, "fix.csv")

	out, err := execute(t, "unmatched", "matched.csv", "--out", outPath)

	require.NoError(t, err)
	assert.Contains(t, out, "nothing to export")
	assert.NotContains(t, out, "written to")
	assert.NoFileExists(t, outPath)
}

func TestTokenCmd(t *testing.T) {
	cliEnv(t)

	out, err := execute(t, "token", "--user", "admin", "--role", "owner")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)

	_, err = execute(t, "token", "--user", "admin", "--role", "root")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}
