package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/lambda-deploy/internal/archive"
	"github.com/oshokin/lambda-deploy/internal/config"
)

// TestBuildConfig_FlagsOverrideFile checks that only flags set on the command line win over the file.
func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	settings := filepath.Join(dir, "deploy.yaml")
	require.NoError(t, os.WriteFile(settings, []byte(
		"function_name: from-file\nrole: arn:aws:iam::123456789012:role/file\nmemory: 512\nruntime: python3.12\n",
	), 0o600))

	root, values := newRootCommand()
	require.NoError(t, root.ParseFlags([]string{
		"--config", settings,
		"--function-name", "from-flag",
		"--timeout", "60",
		"--publish=false",
		"--dry-run",
	}))

	cfg, err := buildConfig(root, values)
	require.NoError(t, err)
	require.Equal(t, "from-flag", cfg.FunctionName)
	require.Equal(t, "arn:aws:iam::123456789012:role/file", cfg.Role)
	require.Equal(t, int32(512), cfg.MemorySize)
	require.Equal(t, int32(60), cfg.Timeout)
	require.Equal(t, "python3.12", cfg.Runtime)
	require.Equal(t, config.DefaultHandler, cfg.Handler)
	require.Equal(t, archive.DefaultFilename, cfg.ArchivePath)
	require.False(t, *cfg.Publish)
	require.True(t, cfg.DryRun)
}

// TestExecute_DryRun runs the whole command without touching AWS.
func TestExecute_DryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, archive.DefaultSource)
	require.NoError(t, os.WriteFile(source, []byte("def lambda_handler(event, context):\n    pass\n"), 0o600))

	info, err := archive.Build(source, filepath.Join(dir, archive.DefaultFilename))
	require.NoError(t, err)

	var out bytes.Buffer

	root, _ := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{
		"--function-name", "orders",
		"--role", "arn:aws:iam::123456789012:role/orders",
		"--zip", info.Path,
		"--dry-run",
	})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "=== DRY RUN ===")
	require.Contains(t, out.String(), "FunctionName: orders")
	require.Contains(t, out.String(), "CodeSha256: "+info.Checksum)
}

// TestExecute_Errors fails on bad input without reaching AWS.
func TestExecute_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, archive.DefaultSource)
	require.NoError(t, os.WriteFile(source, []byte("def lambda_handler(event, context):\n    pass\n"), 0o600))

	info, err := archive.Build(source, filepath.Join(dir, archive.DefaultFilename))
	require.NoError(t, err)

	cases := map[string][]string{
		"zero timeout":          {"-f", "orders", "-r", "r", "--zip", info.Path, "--timeout", "0", "--dry-run"},
		"zero memory":           {"-f", "orders", "-r", "r", "--zip", info.Path, "--memory", "0", "--dry-run"},
		"missing function name": {"--role", "r", "--dry-run"},
		"missing archive":       {"-f", "orders", "-r", "r", "--zip", filepath.Join(t.TempDir(), "none.zip")},
		"bad output format":     {"-f", "orders", "-r", "r", "--dry-run", "-o", "xml"},
		"bad log level":         {"-f", "orders", "-r", "r", "--dry-run", "--log-level", "loud"},
	}

	for name, args := range cases {
		root, _ := newRootCommand()
		root.SetOut(new(bytes.Buffer))
		root.SetErr(new(bytes.Buffer))
		root.SetArgs(args)

		require.Error(t, root.Execute(), name)
	}
}
