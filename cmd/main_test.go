package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"4d63.com/testcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGit(t *testing.T) {
	dir := testcli.MkdirTemp(t)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	testcli.Exec(t, "git config --global user.email 'tests@example.com'")
	testcli.Exec(t, "git config --global user.name 'Tests'")
	testcli.Exec(t, "git config --global init.defaultBranch master")
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func gitExec(t *testing.T, command string) string {
	_, stdout, _ := testcli.Exec(t, command)
	return strings.TrimSpace(stdout)
}

// newRemote creates a bare repository with one commit on master and the same
// commit on each of the extra branches.
func newRemote(t *testing.T, branches ...string) string {
	remote := testcli.MkdirTemp(t)
	testcli.Chdir(t, remote)
	testcli.Exec(t, "git init --bare")

	seed := testcli.MkdirTemp(t)
	testcli.Chdir(t, seed)
	testcli.Exec(t, "git init")
	writeFile(t, "README.md", "platform\n")
	testcli.Exec(t, "git add .")
	testcli.Exec(t, "git commit -m 'Initial commit'")
	testcli.Exec(t, "git remote add origin "+remote)
	testcli.Exec(t, "git push origin master")
	for _, b := range branches {
		testcli.Exec(t, "git push origin master:refs/heads/"+b)
	}
	return remote
}

// newWorkspace creates a workspace directory whose manifest lists one
// repository named platform. The primary URL does not exist, so every clone
// goes through the fallback.
func newWorkspace(t *testing.T, fallback string) string {
	ws := testcli.MkdirTemp(t)
	testcli.Chdir(t, ws)
	writeFile(t, ".groundwork.yml", fmt.Sprintf(`branches: [development, master]
repositories:
  - name: platform
    primaryUrl: %s
    fallbackUrl: %s
`, filepath.Join(ws, "missing.git"), fallback))
	return ws
}

func TestSyncFreshCloneFallsBackToMaster(t *testing.T) {
	setupGit(t)
	remote := newRemote(t)
	ws := newWorkspace(t, remote)

	args := []string{"groundwork", "sync"}
	exitCode, stdout, stderr := testcli.Main(t, args, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "platform: cloning")
	assert.Contains(t, stdout, "platform: on master")
	assert.Contains(t, stdout, "cloned from fallback remote "+remote)
	assert.Contains(t, stdout, "1 succeeded, 0 skipped, 0 failed")

	assert.Equal(t, "master", gitExec(t, "git -C platform symbolic-ref --short HEAD"))

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, evalSymlinks(t, ws), evalSymlinks(t, wd))
}

func TestSyncCreatesTrackingBranch(t *testing.T) {
	setupGit(t)
	remote := newRemote(t, "development")
	newWorkspace(t, remote)

	args := []string{"groundwork", "sync"}
	exitCode, stdout, stderr := testcli.Main(t, args, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "platform: creating development tracking origin/development")
	assert.Contains(t, stdout, "platform: on development")

	assert.Equal(t, "development", gitExec(t, "git -C platform symbolic-ref --short HEAD"))
	assert.Equal(t, "origin/development", gitExec(t, "git -C platform rev-parse --abbrev-ref development@{upstream}"))
}

func TestSyncIsIdempotent(t *testing.T) {
	setupGit(t)
	remote := newRemote(t, "development")
	newWorkspace(t, remote)

	exitCode, _, stderr := testcli.Main(t, []string{"groundwork", "sync"}, nil, Run)
	require.Equal(t, 0, exitCode, "stderr: %s", stderr)

	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "sync"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "platform: using existing checkout")
	assert.Contains(t, stdout, "platform: pulling development")
	assert.NotContains(t, stdout, "cloning")
	assert.Equal(t, "development", gitExec(t, "git -C platform symbolic-ref --short HEAD"))
}

func TestSyncKeepsLocalChangesOnOtherBranch(t *testing.T) {
	setupGit(t)
	remote := newRemote(t, "development")
	ws := newWorkspace(t, remote)

	exitCode, _, stderr := testcli.Main(t, []string{"groundwork", "sync"}, nil, Run)
	require.Equal(t, 0, exitCode, "stderr: %s", stderr)

	testcli.Chdir(t, filepath.Join(ws, "platform"))
	testcli.Exec(t, "git checkout -b feature-x")
	writeFile(t, "notes.txt", "work in progress\n")
	testcli.Chdir(t, ws)

	exitCode, stdout, _ := testcli.Main(t, []string{"groundwork", "sync"}, nil, Run)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stdout, "platform: needs your attention: local changes on feature-x")
	assert.Contains(t, stdout, "0 succeeded, 1 skipped, 0 failed")
	assert.Equal(t, "feature-x", gitExec(t, "git -C platform symbolic-ref --short HEAD"))
	assert.FileExists(t, filepath.Join(ws, "platform", "notes.txt"))

	exitCode, stdout, stderr = testcli.Main(t, []string{"groundwork", "sync", "--force"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "platform: discarding local changes")
	assert.Contains(t, stdout, "platform: on development")
	assert.Equal(t, "development", gitExec(t, "git -C platform symbolic-ref --short HEAD"))
	assert.NoFileExists(t, filepath.Join(ws, "platform", "notes.txt"))
}

func TestSyncIgnoresBranchesWithTheSameSuffix(t *testing.T) {
	setupGit(t)
	remote := newRemote(t, "feature/development")
	newWorkspace(t, remote)

	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "sync"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "platform: pulling master")
	assert.Contains(t, stdout, "platform: on master")
	assert.Equal(t, "master", gitExec(t, "git -C platform symbolic-ref --short HEAD"))
}

func TestSyncRefusesDirectoryInsideAnotherRepository(t *testing.T) {
	setupGit(t)
	remote := newRemote(t, "development")
	ws := newWorkspace(t, remote)

	testcli.Exec(t, "git init")
	writeFile(t, "README.md", "workspace\n")
	testcli.Exec(t, "git add README.md")
	testcli.Exec(t, "git commit -m 'Workspace notes'")
	writeFile(t, "README.md", "workspace\nunsaved edit\n")
	require.NoError(t, os.Mkdir(filepath.Join(ws, "platform"), 0o755))

	for _, backend := range []string{"exec", "gogit"} {
		exitCode, stdout, _ := testcli.Main(t, []string{"groundwork", "sync", "--force", "--backend", backend}, nil, Run)
		assert.Equal(t, 1, exitCode, backend)
		assert.Contains(t, stdout, "platform: not a git repository", backend)
		assert.Contains(t, stdout, "0 succeeded, 0 skipped, 1 failed", backend)
	}

	assert.Equal(t, "master", gitExec(t, "git symbolic-ref --short HEAD"))
	content, err := os.ReadFile(filepath.Join(ws, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "workspace\nunsaved edit\n", string(content))
	assert.NoDirExists(t, filepath.Join(ws, "platform", ".git"))
}

func TestSyncKeepsLocalChangesOnResolvedBranch(t *testing.T) {
	setupGit(t)
	remote := newRemote(t, "development")
	ws := newWorkspace(t, remote)

	exitCode, _, stderr := testcli.Main(t, []string{"groundwork", "sync"}, nil, Run)
	require.Equal(t, 0, exitCode, "stderr: %s", stderr)

	writeFile(t, filepath.Join("platform", "notes.txt"), "work in progress\n")

	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "sync"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "platform: keeping local changes on development")
	assert.Contains(t, stdout, "platform: on development")
	assert.FileExists(t, filepath.Join(ws, "platform", "notes.txt"))
}

func TestSyncQuiet(t *testing.T) {
	setupGit(t)
	remote := newRemote(t)
	newWorkspace(t, remote)

	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "sync", "-q"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.NotContains(t, stdout, "cloning")
	assert.Contains(t, stdout, "platform: on master")
}

func TestSyncJSON(t *testing.T) {
	setupGit(t)
	remote := newRemote(t, "development")
	newWorkspace(t, remote)

	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "sync", "--json"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stderr, "platform: cloning")

	var report struct {
		Success bool `json:"success"`
		Counts  struct {
			Succeeded int `json:"succeeded"`
			Total     int `json:"total"`
		} `json:"counts"`
		Outcomes []struct {
			Repo   string `json:"repo"`
			Status string `json:"status"`
			Branch string `json:"branch"`
		} `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report), "stdout: %s", stdout)
	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Counts.Succeeded)
	assert.Equal(t, 1, report.Counts.Total)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "platform", report.Outcomes[0].Repo)
	assert.Equal(t, "succeeded", report.Outcomes[0].Status)
	assert.Equal(t, "development", report.Outcomes[0].Branch)
}

func TestSyncDryRun(t *testing.T) {
	setupGit(t)
	remote := newRemote(t)
	ws := newWorkspace(t, remote)

	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "sync", "--dry-run"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "platform:\n")
	assert.Contains(t, stdout, "Clone into platform from")
	assert.NoDirExists(t, filepath.Join(ws, "platform"))
}

func TestSyncGoGitBackend(t *testing.T) {
	setupGit(t)
	remote := newRemote(t, "development")
	newWorkspace(t, remote)

	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "sync", "--backend", "gogit"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "platform: on development")
	assert.Equal(t, "development", gitExec(t, "git -C platform symbolic-ref --short HEAD"))
}

func TestSyncWorkspaceFlag(t *testing.T) {
	setupGit(t)
	remote := newRemote(t)
	ws := newWorkspace(t, remote)

	elsewhere := testcli.MkdirTemp(t)
	testcli.Chdir(t, elsewhere)

	exitCode, _, stderr := testcli.Main(t, []string{"groundwork", "-C", ws, "sync"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.DirExists(t, filepath.Join(ws, "platform"))
	assert.NoDirExists(t, filepath.Join(elsewhere, "platform"))

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, evalSymlinks(t, elsewhere), evalSymlinks(t, wd))
}

func TestSyncPreconditions(t *testing.T) {
	setupGit(t)
	remote := newRemote(t)
	ws := newWorkspace(t, remote)

	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{
			name:       "unknown repository",
			args:       []string{"groundwork", "sync", "nope"},
			wantStderr: "unknown repository: nope",
		},
		{
			name:       "unknown backend",
			args:       []string{"groundwork", "sync", "--backend", "svn"},
			wantStderr: `unknown backend "svn"`,
		},
		{
			name:       "missing workspace",
			args:       []string{"groundwork", "-C", filepath.Join(ws, "nowhere"), "sync"},
			wantStderr: "workspace directory",
		},
		{
			name:       "missing manifest",
			args:       []string{"groundwork", "--manifest", filepath.Join(ws, "nowhere.yml"), "sync"},
			wantStderr: "failed to read manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode, stdout, stderr := testcli.Main(t, tt.args, nil, Run)
			assert.Equal(t, 1, exitCode)
			assert.Equal(t, "", stdout)
			assert.Contains(t, stderr, tt.wantStderr)
			assert.NoDirExists(t, filepath.Join(ws, "platform"))
		})
	}
}

func TestSyncInvalidManifest(t *testing.T) {
	setupGit(t)
	ws := testcli.MkdirTemp(t)
	testcli.Chdir(t, ws)
	writeFile(t, ".groundwork.yml", "repositories:\n  - name: ../escape\n    primaryUrl: x\n")

	exitCode, _, stderr := testcli.Main(t, []string{"groundwork", "sync"}, nil, Run)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr, "invalid manifest")
}

func TestStatus(t *testing.T) {
	setupGit(t)
	remote := newRemote(t, "development")
	newWorkspace(t, remote)

	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "status"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "REPOSITORY")
	assert.Contains(t, stdout, "platform")

	exitCode, _, stderr = testcli.Main(t, []string{"groundwork", "sync"}, nil, Run)
	require.Equal(t, 0, exitCode, "stderr: %s", stderr)

	exitCode, stdout, stderr = testcli.Main(t, []string{"groundwork", "status"}, nil, Run)
	assert.Equal(t, 0, exitCode, "stderr: %s", stderr)
	assert.Contains(t, stdout, "development")
	assert.Contains(t, stdout, "yes")
}

func TestList(t *testing.T) {
	setupGit(t)
	newWorkspace(t, "https://example.com/platform.git")

	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "list"}, nil, Run)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "", stderr)
	assert.Contains(t, stdout, "platform")
	assert.Contains(t, stdout, "https://example.com/platform.git")
	assert.Contains(t, stdout, "DEVELOPMENT > MASTER")
}

func TestListWithoutManifestUsesSample(t *testing.T) {
	setupGit(t)
	ws := testcli.MkdirTemp(t)
	testcli.Chdir(t, ws)

	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "list"}, nil, Run)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stderr, "built-in sample manifest")
	assert.Contains(t, stdout, "example-org")
}

func TestVersion(t *testing.T) {
	exitCode, stdout, stderr := testcli.Main(t, []string{"groundwork", "version"}, nil, Run)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "", stderr)
	assert.Equal(t, "groundwork dev, commit none, built at unknown\n", stdout)
}

func evalSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}
