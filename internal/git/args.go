package git

import "strings"

// CloneArgs constructs arguments for cloning url into dir.
func CloneArgs(url, dir string) []string {
	return []string{"clone", "--", url, dir}
}

// LsRemoteArgs constructs arguments that list origin's heads matching branch.
// git matches the pattern against ref name tails, so the output still has to
// be checked with HasRef.
func LsRemoteArgs(branch string) []string {
	return []string{"ls-remote", "--heads", RemoteName, BranchRef(branch)}
}

// BranchRef returns the full reference name of a local branch.
func BranchRef(branch string) string {
	return "refs/heads/" + branch
}

// HasRef reports whether ls-remote output lists exactly ref.
func HasRef(lsRemoteOutput, ref string) bool {
	for _, line := range strings.Split(lsRemoteOutput, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == ref {
			return true
		}
	}
	return false
}

// CurrentBranchArgs constructs arguments that print the branch name, or exit 1 when detached.
func CurrentBranchArgs() []string {
	return []string{"symbolic-ref", "--quiet", "--short", "HEAD"}
}

// ShowToplevelArgs constructs arguments that print the root of the enclosing
// working tree, or exit 128 outside of one.
func ShowToplevelArgs() []string {
	return []string{"rev-parse", "--show-toplevel"}
}

// StatusArgs constructs arguments for a machine-readable working tree status.
func StatusArgs() []string {
	return []string{"status", "--porcelain"}
}

// VerifyLocalBranchArgs constructs arguments that exit 1 when the local branch is missing.
func VerifyLocalBranchArgs(branch string) []string {
	return []string{"rev-parse", "--verify", "--quiet", BranchRef(branch)}
}

// DiscardArgs returns the commands that drop every local change: tracked files
// go back to HEAD, then untracked files and directories are removed.
func DiscardArgs() [][]string {
	return [][]string{
		{"reset", "--hard", "HEAD"},
		{"clean", "-fd"},
	}
}

// CheckoutTrackingArgs returns the commands that create branch from origin and switch to it.
// The fetch makes sure origin/<branch> exists locally before checkout.
func CheckoutTrackingArgs(branch string) [][]string {
	return [][]string{
		{"fetch", RemoteName, "+refs/heads/" + branch + ":refs/remotes/" + RemoteName + "/" + branch},
		{"checkout", "-b", branch, "--track", RemoteName + "/" + branch},
	}
}

// CheckoutArgs constructs arguments for switching to an existing local branch.
func CheckoutArgs(branch string) []string {
	return []string{"checkout", branch, "--"}
}

// PullArgs constructs arguments for pulling branch from origin.
func PullArgs(branch string) []string {
	return []string{"pull", RemoteName, branch}
}
