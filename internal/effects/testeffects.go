package effects

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/m44rten1/groundwork/internal/config"
)

// WorkspaceRoot is the directory a TestEffects starts in.
const WorkspaceRoot = "/workspace"

// Operation names used as keys in TestEffects.Errors.
const (
	OpClone         = "clone"
	OpRepoRoot      = "repo-root"
	OpLsRemote      = "ls-remote"
	OpCurrentBranch = "current-branch"
	OpStatus        = "status"
	OpLocalBranch   = "local-branch"
	OpDiscard       = "discard"
	OpCheckout      = "checkout"
	OpPull          = "pull"
	OpChdir         = "chdir"
	OpGetwd         = "getwd"
	OpSelect        = "select"
)

const (
	errNotARepo      = "not a git repository: %s"
	errNoSuchRemote  = "repository %s not found"
	errNoSuchBranch  = "pathspec '%s' did not match any branch"
	errBranchExists  = "a branch named '%s' already exists"
	errWouldOverride = "local changes would be overwritten by checkout"
)

// FakeRemote is a simulated remote repository.
type FakeRemote struct {
	Branches []string
	// Head is the branch a fresh clone checks out (default "master").
	Head string
}

// FakeRepo is a simulated local working copy.
type FakeRepo struct {
	RemoteBranches map[string]bool
	LocalBranches  map[string]bool
	// Current is "" for a detached HEAD.
	Current string
	Dirty   bool
	// Pulls counts successful pulls per branch.
	Pulls map[string]int
}

// NewFakeRepo creates a repository checked out on current, with the given branches on origin.
func NewFakeRepo(current string, dirty bool, remoteBranches ...string) *FakeRepo {
	r := &FakeRepo{
		RemoteBranches: make(map[string]bool),
		LocalBranches:  make(map[string]bool),
		Current:        current,
		Dirty:          dirty,
		Pulls:          make(map[string]int),
	}
	for _, b := range remoteBranches {
		r.RemoteBranches[b] = true
	}
	if current != "" {
		r.LocalBranches[current] = true
	}
	return r
}

// TestEffects is a mock implementation of Effects for testing.
// It simulates a workspace of git repositories in memory, tracks the working
// directory, and records every call.
type TestEffects struct {
	// Simulated world
	Cwd     string
	Dirs    map[string]bool
	Repos   map[string]*FakeRepo   // Keyed by absolute directory
	Remotes map[string]*FakeRemote // Keyed by URL

	// Errors injects failures. The key is an operation name, optionally
	// followed by a space and the repository directory's base name
	// (e.g. "pull services"), or the URL for clones ("clone <url>").
	Errors map[string]error

	// Interaction results
	SelectedIndexes []int

	// Call tracking (captured side effects and arguments)
	Calls       []string // "<repo>: <op> [arg]" for every git call
	Discarded   []string // Repos that had DiscardChanges called
	ChdirCalls  []string // Directories passed to Chdir
	PrintedMsgs []string // Messages printed via Print
	PrintedErrs []string // Messages printed via PrintErr
}

// NewTestEffects creates a new TestEffects with an empty workspace.
func NewTestEffects() *TestEffects {
	return &TestEffects{
		Cwd:         WorkspaceRoot,
		Dirs:        map[string]bool{WorkspaceRoot: true},
		Repos:       make(map[string]*FakeRepo),
		Remotes:     make(map[string]*FakeRemote),
		Errors:      make(map[string]error),
		Calls:       []string{},
		Discarded:   []string{},
		ChdirCalls:  []string{},
		PrintedMsgs: []string{},
		PrintedErrs: []string{},
	}
}

// AddRepo places an existing working copy named name in the workspace root.
func (t *TestEffects) AddRepo(name string, repo *FakeRepo) {
	dir := filepath.Join(WorkspaceRoot, name)
	t.Dirs[dir] = true
	t.Repos[dir] = repo
}

// Repo returns the working copy named name in the workspace root, or nil.
func (t *TestEffects) Repo(name string) *FakeRepo {
	return t.Repos[filepath.Join(WorkspaceRoot, name)]
}

func (t *TestEffects) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(t.Cwd, path)
}

func (t *TestEffects) injected(op, qualifier string) error {
	if err, ok := t.Errors[op+" "+qualifier]; ok {
		return err
	}
	return t.Errors[op]
}

func (t *TestEffects) record(op, arg string) {
	call := filepath.Base(t.Cwd) + ": " + op
	if arg != "" {
		call += " " + arg
	}
	t.Calls = append(t.Calls, call)
}

// repo records the call and returns the repository in the working directory.
func (t *TestEffects) repo(op, arg string) (*FakeRepo, error) {
	t.record(op, arg)
	if err := t.injected(op, filepath.Base(t.Cwd)); err != nil {
		return nil, err
	}
	r, ok := t.Repos[t.Cwd]
	if !ok {
		return nil, fmt.Errorf(errNotARepo, t.Cwd)
	}
	return r, nil
}

func (t *TestEffects) Clone(ctx context.Context, url, dir string) error {
	t.Calls = append(t.Calls, filepath.Base(dir)+": clone "+url)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.injected(OpClone, url); err != nil {
		return err
	}
	remote, ok := t.Remotes[url]
	if !ok {
		return fmt.Errorf(errNoSuchRemote, url)
	}
	target := t.abs(dir)
	if t.Dirs[target] {
		return fmt.Errorf("destination path '%s' already exists", dir)
	}

	head := remote.Head
	if head == "" {
		head = "master"
	}
	t.Dirs[target] = true
	t.Repos[target] = NewFakeRepo(head, false, remote.Branches...)
	return nil
}

// IsRepositoryRoot is true when a simulated repository lives exactly at the
// working directory.
func (t *TestEffects) IsRepositoryRoot(ctx context.Context) (bool, error) {
	t.record(OpRepoRoot, "")
	if err := t.injected(OpRepoRoot, filepath.Base(t.Cwd)); err != nil {
		return false, err
	}
	_, ok := t.Repos[t.Cwd]
	return ok, nil
}

func (t *TestEffects) RemoteBranchExists(ctx context.Context, branch string) (bool, error) {
	r, err := t.repo(OpLsRemote, branch)
	if err != nil {
		return false, err
	}
	return r.RemoteBranches[branch], nil
}

func (t *TestEffects) CurrentBranch(ctx context.Context) (string, error) {
	r, err := t.repo(OpCurrentBranch, "")
	if err != nil {
		return "", err
	}
	return r.Current, nil
}

func (t *TestEffects) HasLocalChanges(ctx context.Context) (bool, error) {
	r, err := t.repo(OpStatus, "")
	if err != nil {
		return false, err
	}
	return r.Dirty, nil
}

func (t *TestEffects) LocalBranchExists(ctx context.Context, branch string) (bool, error) {
	r, err := t.repo(OpLocalBranch, branch)
	if err != nil {
		return false, err
	}
	return r.LocalBranches[branch], nil
}

func (t *TestEffects) DiscardChanges(ctx context.Context) error {
	r, err := t.repo(OpDiscard, "")
	if err != nil {
		return err
	}
	t.Discarded = append(t.Discarded, filepath.Base(t.Cwd))
	r.Dirty = false
	return nil
}

func (t *TestEffects) CheckoutTracking(ctx context.Context, branch string) error {
	r, err := t.repo(OpCheckout, "-b "+branch)
	if err != nil {
		return err
	}
	if !r.RemoteBranches[branch] {
		return fmt.Errorf(errNoSuchBranch, "origin/"+branch)
	}
	if r.LocalBranches[branch] {
		return fmt.Errorf(errBranchExists, branch)
	}
	if r.Dirty {
		return fmt.Errorf(errWouldOverride)
	}
	r.LocalBranches[branch] = true
	r.Current = branch
	return nil
}

func (t *TestEffects) CheckoutExisting(ctx context.Context, branch string) error {
	r, err := t.repo(OpCheckout, branch)
	if err != nil {
		return err
	}
	if !r.LocalBranches[branch] {
		return fmt.Errorf(errNoSuchBranch, branch)
	}
	if r.Dirty {
		return fmt.Errorf(errWouldOverride)
	}
	r.Current = branch
	return nil
}

func (t *TestEffects) Pull(ctx context.Context, branch string) error {
	r, err := t.repo(OpPull, branch)
	if err != nil {
		return err
	}
	if !r.RemoteBranches[branch] {
		return fmt.Errorf("couldn't find remote ref %s", branch)
	}
	r.Pulls[branch]++
	return nil
}

// DirExists reports whether the simulated directory exists.
func (t *TestEffects) DirExists(path string) bool {
	return t.Dirs[t.abs(path)]
}

func (t *TestEffects) Getwd() (string, error) {
	if err := t.Errors[OpGetwd]; err != nil {
		return "", err
	}
	return t.Cwd, nil
}

func (t *TestEffects) Chdir(dir string) error {
	target := t.abs(dir)
	t.ChdirCalls = append(t.ChdirCalls, target)
	if err := t.injected(OpChdir, filepath.Base(target)); err != nil {
		return err
	}
	if !t.Dirs[target] {
		return fmt.Errorf("chdir %s: no such file or directory", dir)
	}
	t.Cwd = target
	return nil
}

func (t *TestEffects) Print(msg string) {
	t.PrintedMsgs = append(t.PrintedMsgs, msg)
}

func (t *TestEffects) PrintErr(msg string) {
	t.PrintedErrs = append(t.PrintedErrs, msg)
}

func (t *TestEffects) SelectRepositories(specs []config.RepositorySpec) ([]int, error) {
	if err := t.Errors[OpSelect]; err != nil {
		return nil, err
	}
	for _, i := range t.SelectedIndexes {
		if i < 0 || i >= len(specs) {
			return nil, fmt.Errorf("invalid selection index")
		}
	}
	return t.SelectedIndexes, nil
}
