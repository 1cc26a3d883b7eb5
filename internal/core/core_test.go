package core

// state builds a RepositoryState for planner tests with the default candidates.
func state(current, resolved string, dirty, localBranch bool) RepositoryState {
	return RepositoryState{
		Name:              "platform",
		Exists:            true,
		Candidates:        []string{"development", "master"},
		ResolvedBranch:    resolved,
		CurrentBranch:     current,
		HasLocalChanges:   dirty,
		LocalBranchExists: localBranch,
	}
}

// gitActions drops narration so tests can compare the effectful steps only.
func gitActions(plan Plan) []Action {
	var out []Action
	for _, a := range plan.Actions {
		if _, ok := a.(PrintMessage); ok {
			continue
		}
		out = append(out, a)
	}
	return out
}
