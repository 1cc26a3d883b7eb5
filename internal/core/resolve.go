package core

// ResolveBranch returns the first candidate present on the remote.
// The second result is false when none of the candidates exist there.
func ResolveBranch(candidates []string, onRemote map[string]bool) (string, bool) {
	for _, c := range candidates {
		if onRemote[c] {
			return c, true
		}
	}
	return "", false
}
