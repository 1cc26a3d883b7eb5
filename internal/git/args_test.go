package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"clone", CloneArgs("git@host:o/r.git", "r"), []string{"clone", "--", "git@host:o/r.git", "r"}},
		{"ls-remote", LsRemoteArgs("development"), []string{"ls-remote", "--heads", "origin", "refs/heads/development"}},
		{"current branch", CurrentBranchArgs(), []string{"symbolic-ref", "--quiet", "--short", "HEAD"}},
		{"show toplevel", ShowToplevelArgs(), []string{"rev-parse", "--show-toplevel"}},
		{"status", StatusArgs(), []string{"status", "--porcelain"}},
		{"verify local", VerifyLocalBranchArgs("master"), []string{"rev-parse", "--verify", "--quiet", "refs/heads/master"}},
		{"checkout", CheckoutArgs("master"), []string{"checkout", "master", "--"}},
		{"pull", PullArgs("development"), []string{"pull", "origin", "development"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestDiscardArgs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, [][]string{
		{"reset", "--hard", "HEAD"},
		{"clean", "-fd"},
	}, DiscardArgs())
}

func TestCheckoutTrackingArgs(t *testing.T) {
	t.Parallel()

	got := CheckoutTrackingArgs("feature/x")
	assert.Equal(t, [][]string{
		{"fetch", "origin", "+refs/heads/feature/x:refs/remotes/origin/feature/x"},
		{"checkout", "-b", "feature/x", "--track", "origin/feature/x"},
	}, got)
}

func TestHasRef(t *testing.T) {
	t.Parallel()

	nested := "3f1c2a9\trefs/heads/feature/development\n"
	exact := "8be0d71\trefs/heads/development\n"

	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"empty", "", false},
		{"nested name only", nested, false},
		{"exact name", exact, true},
		{"both", nested + exact, true},
		{"tag with same tail", "8be0d71\trefs/tags/development\n", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HasRef(tt.output, BranchRef("development")))
		})
	}
}
