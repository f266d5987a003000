package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const boardPayload = `{
	"columns": [
		{"name": "Ready to Dev"}, {"name": "In Progress"}, {"name": "Code Review"},
		{"name": "Testing"}, {"name": "Done"}
	],
	"columnChanges": {
		"1704708000000": [{"key": "A", "columnTo": 1}, {"key": "B", "columnTo": 0}],
		"1704794400000": [{"key": "B", "columnFrom": 0, "columnTo": 4}],
		"1704967200000": [{"key": "A", "columnFrom": 1, "columnTo": 4}],
		"1705395600000": [{"key": "C", "columnTo": 1}, {"key": "A", "columnFrom": 4}]
	}
}`

var isolatedEnv = []string{
	"JIRA_SITE", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_OAUTH_TOKEN", "JIRA_BOARD_FINANCEIRO",
	"BOARDFLOW_BOARD", "BOARDFLOW_LOOKBACK_DAYS", "BOARDFLOW_THROUGHPUT_WEEKS",
	"BOARDFLOW_OUTPUT_DIR", "BOARDFLOW_TIMEZONE", "BOARDFLOW_COLUMNS_TERMINAL",
	"BOARDFLOW_COLUMNS_ACTIVE", "BOARDFLOW_JIRA_SITE", "BOARDFLOW_JIRA_EMAIL",
	"BOARDFLOW_JIRA_API_TOKEN", "BOARDFLOW_JIRA_OAUTH_TOKEN",
	"BOARDFLOW_LOG_LEVEL", "BOARDFLOW_LOG_FORMAT",
}

// withTempDir moves the test into an empty working directory with no
// boardflow settings in the environment.
func withTempDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range isolatedEnv {
		t.Setenv(key, "")
	}
	t.Setenv("BOARDFLOW_TIMEZONE", "UTC")
	return dir
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(RootCmd)
	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

// newJiraServer serves boardPayload and an issue per key.
func newJiraServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/cumulativeflowdiagram.json"):
			_, _ = w.Write([]byte(boardPayload))
		case strings.HasPrefix(r.URL.Path, "/rest/api/2/issue/"):
			key := strings.TrimPrefix(r.URL.Path, "/rest/api/2/issue/")
			_, _ = w.Write([]byte(`{"id": "100` + key + `", "key": "` + key + `", "fields": {
				"issuetype": {"name": "Story"},
				"summary": "Work item ` + key + `",
				"status": {"name": "Done"},
				"resolution": {"name": "Feito"},
				"updated": "2024-01-11T10:00:00.000+0000"
			}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setJiraEnv(t *testing.T, site string) {
	t.Helper()
	t.Setenv("JIRA_SITE", site)
	t.Setenv("JIRA_EMAIL", "dev@example.com")
	t.Setenv("JIRA_API_TOKEN", "secret-token")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func assertFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}
