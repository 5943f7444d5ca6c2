package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func runFields(t *testing.T, args ...string) (map[string]string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"fields"}, args...))

	if err := cmd.Execute(); err != nil {
		return nil, err
	}

	got := map[string]string{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	return got, nil
}

func TestFieldsDefaults(t *testing.T) {
	got, err := runFields(t)

	require.NoError(t, err)
	require.Len(t, got, 12)
	require.Equal(t, "kubernetes.pod_name", got["pod_name"])
	require.Equal(t, "kubernetes.container_image", got["container_image"])
}

func TestFieldsFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"fields:",
		"  pod_name: k8s.pod",
		"  pod_ip: ''",
	}, "\n")), 0o600))

	got, err := runFields(t, "--config", path)

	require.NoError(t, err)
	require.Equal(t, "k8s.pod", got["pod_name"])
	require.Equal(t, "", got["pod_ip"])
	require.Equal(t, "kubernetes.pod_uid", got["pod_uid"])
}

func TestFieldsRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		errContains string
	}{
		{
			name:        "unknown field",
			yaml:        "fields:\n  pod_color: k8s.color\n",
			errContains: "unknown fields: pod_color",
		},
		{
			name:        "bad read-from",
			yaml:        "read-from: middle\n",
			errContains: "invalid read-from",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "annotator.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := runFields(t, "--config", path)

			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestFlagOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotator.yaml")
	require.NoError(t, os.WriteFile(path, []byte("read-from: middle\n"), 0o600))

	_, err := runFields(t, "--config", path, "--read-from", "beginning")

	require.NoError(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := runFields(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	require.Contains(t, err.Error(), "read config")
}
