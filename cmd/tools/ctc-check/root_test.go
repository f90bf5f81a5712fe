package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ctc-budget-checker/internal/budget"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CTC_SERVER", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Local(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "within budget",
			args: []string{"--expected", "85", "--budget", "90"},
			want: "Within budget: Expected CTC of 85.0 LPA is within the maximum budget of 90.0 LPA\n",
		},
		{
			name: "above budget",
			args: []string{"--expected", "45", "--budget", "40"},
			want: "Above budget: Expected CTC of 45.0 LPA is above the maximum budget of 40.0 LPA\n",
		},
		{
			name: "missing budget",
			args: []string{"--expected", "45"},
			want: "Error (Missing parameters): Both expected_ctc and max_budget are required. Proceeding without budget check.\n",
		},
		{
			name: "custom limits",
			args: []string{"--expected", "45", "--budget", "40", "--max", "30"},
			want: "Error (Invalid range): CTC values must be between 0 and 30 LPA. Proceeding without budget check.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRootCmd_JSON(t *testing.T) {
	out, err := execute(t, "--expected", "abc", "--budget", "40", "--json")
	require.NoError(t, err)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Error", resp["result"])
	assert.Equal(t, "Invalid number format", resp["error"])
}

func TestRootCmd_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req budget.CheckRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, budget.CheckRequest{ExpectedCTC: "85", MaxBudget: "90"}, req)
		w.Write([]byte(`{"result":"Within budget","message":"from server"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--expected", "85", "--budget", "90", "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Within budget: from server\n", out)
}

func TestRootCmd_RemoteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := execute(t, "--expected", "85", "--budget", "90", "--server", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote check")
}

func TestRootCmd_InvalidLimits(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"max below min", []string{"--expected", "5", "--budget", "8", "--min", "10", "--max", "0"}, "must be greater than --min"},
		{"max equals min", []string{"--expected", "5", "--budget", "8", "--min", "50", "--max", "50"}, "must be greater than --min"},
		{"negative min", []string{"--expected", "5", "--budget", "8", "--min=-1"}, "--min must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, out)
		})
	}
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	_, err := execute(t, "85", "90")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ctc-check version: unknown\n", out)
}

func TestRegistryCmd(t *testing.T) {
	out, err := execute(t, "registry", "validate")
	require.NoError(t, err)
	assert.Equal(t, "Registry validation passed (1 activities).\n", out)

	out, err = execute(t, "registry", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"taskType": "check-ctc-budget"`)

	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"activities":[]}`), 0o600))
	_, err = execute(t, "registry", "validate", "--path", path)
	assert.Error(t, err)
}
