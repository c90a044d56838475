package registry

import "context"

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Yes approves everything.
var Yes Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// No declines everything.
var No Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
