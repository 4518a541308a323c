package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sens-scan/internal/db"
)

const cliPolicy = `
field:
  constants:
    - card
data_regex:
  rules:
    - '[a-z]+@[a-z]+\.[a-z]+'
funcs:
  text: "hash(%s)"
`

// isolateEnv clears every variable the CLI reads so the host environment
// cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SENS_DB_DIALECT", "SENS_DB_DSN", "SENS_WORKERS", "SENS_SCAN_MODE",
		"SENS_SCAN_PARTIAL_ROWS", "SENS_POLICY", "SENS_OUTPUT", "SENS_SAMPLE_RPS",
		"SENS_SCHEDULE", "LOG_LEVEL", "S3_KEY_ID", "S3_SECRET",
	} {
		t.Setenv(k, "")
	}
}

// runCLI executes the root command and returns stdout, stderr and the error.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meta_dict.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCreateDict_EndToEnd(t *testing.T) {
	isolateEnv(t)
	dsn := db.CreateTestSQLite(t,
		`CREATE TABLE customers (id INTEGER PRIMARY KEY, card TEXT, mail TEXT, city TEXT)`,
		`INSERT INTO customers (card, mail, city) VALUES ('4111', 'ann@example.com', 'Oslo')`,
	)
	out := filepath.Join(t.TempDir(), "dict.json")

	stdout, stderr, err := runCLI(t, "create-dict",
		"--dialect", "sqlite",
		"--dsn", dsn,
		"--policy", writePolicy(t, cliPolicy),
		"--output", out,
		"--workers", "2",
		"--scan-mode", "full",
	)
	require.NoError(t, err, stderr)
	assert.True(t, strings.HasPrefix(stdout, "DONE run="), stdout)
	assert.Contains(t, stdout, "tables=1 fields=2")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mail": "hash(mail)"`)
	assert.Contains(t, string(data), `"card": "hash(card)"`)
	assert.NotContains(t, string(data), "city")
}

func TestCreateDict_EnvAndFlagPrecedence(t *testing.T) {
	isolateEnv(t)
	dsn := db.CreateTestSQLite(t,
		`CREATE TABLE t (id INTEGER PRIMARY KEY, card TEXT)`,
		`INSERT INTO t (card) VALUES ('x')`,
	)
	out := filepath.Join(t.TempDir(), "dict.json")
	t.Setenv("SENS_DB_DIALECT", "sqlite")
	t.Setenv("SENS_DB_DSN", dsn)
	t.Setenv("SENS_POLICY", writePolicy(t, cliPolicy))
	t.Setenv("SENS_OUTPUT", filepath.Join(t.TempDir(), "env.json"))

	_, stderr, err := runCLI(t, "create-dict", "--output", out)
	require.NoError(t, err, stderr)
	assert.FileExists(t, out)
}

func TestCreateDict_FailureExitsWithError(t *testing.T) {
	isolateEnv(t)
	out := filepath.Join(t.TempDir(), "dict.json")

	stdout, _, err := runCLI(t, "create-dict",
		"--dialect", "sqlite",
		"--dsn", db.CreateTestSQLite(t),
		"--policy", writePolicy(t, cliPolicy),
		"--output", out,
	)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(stdout, "FAIL run="), stdout)
	assert.NoFileExists(t, out)
}

func TestCreateDict_InvalidConfig(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := runCLI(t, "create-dict", "--dialect", "oracle", "--dsn", "x", "--policy", "p", "--output", "o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported dialect")
	assert.True(t, strings.HasPrefix(stdout, "FAIL run="), stdout)

	_, _, err = runCLI(t, "create-dict", "--dialect", "sqlite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SENS_DB_DSN")
}

func TestCreateDict_SetupFailuresReportFail(t *testing.T) {
	isolateEnv(t)
	dsn := db.CreateTestSQLite(t, `CREATE TABLE t (id INTEGER PRIMARY KEY, card TEXT)`)

	tests := []struct {
		name   string
		policy string
		output string
		want   string
	}{
		{"missing policy", filepath.Join(t.TempDir(), "absent.yaml"), filepath.Join(t.TempDir(), "d.json"), "absent.yaml"},
		{"bad policy", writePolicy(t, "field: [unterminated"), filepath.Join(t.TempDir(), "d.json"), "parse policy"},
		{"unusable output", writePolicy(t, cliPolicy), "s3://bucket/d.json", "S3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout, _, err := runCLI(t, "create-dict",
				"--dialect", "sqlite",
				"--dsn", dsn,
				"--policy", tc.policy,
				"--output", tc.output,
			)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.True(t, strings.HasPrefix(stdout, "FAIL run="), stdout)
			assert.Contains(t, stdout, "tables=0 fields=0")
		})
	}
}

func TestValidatePolicy(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := runCLI(t, "validate-policy", writePolicy(t, cliPolicy))
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid")
	assert.Contains(t, stdout, "field constants=1")
	assert.Contains(t, stdout, "data regex=1")

	_, _, err = runCLI(t, "validate-policy", writePolicy(t, "data_regex:\n  rules:\n    - '(['\n"))
	require.Error(t, err)

	_, _, err = runCLI(t, "validate-policy")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sens-scan version dev (commit: none)\n", stdout)
}

func TestLogLevelFlagWritesJSONToNonTerminal(t *testing.T) {
	isolateEnv(t)
	_, stderr, err := runCLI(t, "--log-level", "debug", "validate-policy", writePolicy(t, cliPolicy))
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"policy valid"`)
}
