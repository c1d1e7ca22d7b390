package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sonarsarthak/EDUManager/internal/models"
	"github.com/sonarsarthak/EDUManager/internal/service"
	"github.com/sonarsarthak/EDUManager/pkg/config"
)

const courseSheet = `Branch,Semester,Course Code,Course Name,L/T/P,Main Faculty,Co-Faculty
CSE,5,CS501,Algorithms,3/1/2,Dr. A,Dr. D
CSE,5,CS502,DBMS,3/0/2,Dr. B,N.R.
ECE,3,EC301,Signals,2/1/2,Dr. C,Dr. E
`

func testConfig(outputDir string) *config.Config {
	return &config.Config{
		JWT:     config.JWTConfig{Secret: "cli-secret", Issuer: "edumanager", Expiration: time.Hour},
		Exports: config.ExportsConfig{OutputDir: outputDir},
	}
}

func execute(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	root := newRootCmd(cfg, zap.NewNop())
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateWritesTables(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "courses.csv")
	require.NoError(t, os.WriteFile(input, []byte(courseSheet), 0o644))
	output := filepath.Join(dir, "out")

	stdout, err := execute(t, testConfig(output), "generate", "--input", input, "--seed", "7", "--format", "csv,xlsx")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Seed: 7")
	assert.Contains(t, stdout, "Courses scheduled: 3/3 (100.0%)")
	assert.Contains(t, stdout, "Sessions scheduled: 16/16 (100.0%)")
	assert.Contains(t, stdout, "Conflicts: 0")
	assert.Contains(t, stdout, "Dr. A: 6 sessions")

	for _, format := range []models.ExportFormat{models.ExportFormatCSV, models.ExportFormatXLSX} {
		for _, kind := range models.ExportKinds {
			assert.FileExists(t, filepath.Join(output, kind.Filename(format)))
		}
	}
	assert.NoFileExists(t, filepath.Join(output, models.ExportSummary.Filename(models.ExportFormatPDF)))

	summary, err := os.ReadFile(filepath.Join(output, models.ExportSummary.Filename(models.ExportFormatCSV)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(summary), "Branch,Semester,"))
}

func TestGenerateRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "courses.csv")
	require.NoError(t, os.WriteFile(input, []byte(courseSheet), 0o644))

	_, err := execute(t, testConfig(dir), "generate", "--input", input, "--format", "docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docx")
}

func TestGenerateRequiresInput(t *testing.T) {
	_, err := execute(t, testConfig(t.TempDir()), "generate")
	require.Error(t, err)
}

func TestTemplateCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sheet.xlsx")
	stdout, err := execute(t, testConfig(""), "template", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, out)
	assert.FileExists(t, out)

	_, err = execute(t, testConfig(""), "template", "--out", filepath.Join(t.TempDir(), "sheet.txt"))
	require.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	cfg := testConfig("")
	stdout, err := execute(t, cfg, "token", "--subject", "ops", "--role", "teacher")
	require.NoError(t, err)

	claims, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration).ValidateToken(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)

	_, err = execute(t, cfg, "token", "--role", "janitor")
	require.Error(t, err)
}
