package security

import (
	"context"
	"fmt"
)

// Confirmer asks a human to approve an irreversible action.
type Confirmer interface {
	Confirm(ctx context.Context, action, description string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, action, description string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, action, description string) (bool, error) {
	return f(ctx, action, description)
}

// DeleteGate requires confirmation for deletions of confined paths.
type DeleteGate struct {
	paths     *PathChecker
	confirmer Confirmer
}

// NewDeleteGate creates a delete gate. A nil confirmer denies every deletion.
func NewDeleteGate(paths *PathChecker, confirmer Confirmer) *DeleteGate {
	return &DeleteGate{paths: paths, confirmer: confirmer}
}

// Check validates path, then asks for confirmation.
func (g *DeleteGate) Check(ctx context.Context, path string) Verdict {
	if v := g.paths.Check(path); !v.Allowed {
		return v
	}

	if g.confirmer == nil {
		return Deny("deletion cancelled: no confirmation channel available")
	}

	ok, err := g.confirmer.Confirm(ctx, "delete", fmt.Sprintf("Delete file %s", path))
	if err != nil {
		return Deny("deletion cancelled: %v", err)
	}
	if !ok {
		return Deny("deletion cancelled by user")
	}

	return Allow()
}
