// Package workdir scopes changes of the process working directory.
package workdir

import "fmt"

// Changer is the part of the process state workdir needs.
type Changer interface {
	Getwd() (string, error)
	Chdir(dir string) error
}

// Enter changes into dir and returns a function that changes back to the
// directory that was current before. Defer the returned function right away:
//
//	restore, err := workdir.Enter(fx, name)
//	if err != nil {
//	    return err
//	}
//	defer restore()
//
// On error nothing was changed and restore is nil.
func Enter(c Changer, dir string) (restore func() error, err error) {
	prev, err := c.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := c.Chdir(dir); err != nil {
		return nil, fmt.Errorf("failed to enter %s: %w", dir, err)
	}

	return func() error {
		if err := c.Chdir(prev); err != nil {
			return fmt.Errorf("failed to return to %s: %w", prev, err)
		}
		return nil
	}, nil
}
