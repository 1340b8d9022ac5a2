// Package sandbox guarantees that the sandboxed root owning a target path
// exists before any file operation runs against it.
package sandbox

import (
	"context"
	"strings"

	"github.com/getsiphon/siphonfs/internal/fserr"
	"github.com/getsiphon/siphonfs/internal/native"
	"github.com/getsiphon/siphonfs/internal/shared/paths"
)

// Guarantor resolves a path's owning root and ensures it exists on disk.
type Guarantor struct {
	policy *paths.Policy
	native native.Client
}

// NewGuarantor creates a guarantor over the given policy and collaborator.
func NewGuarantor(policy *paths.Policy, client native.Client) *Guarantor {
	return &Guarantor{policy: policy, native: client}
}

// Ensure resolves the owning sandboxed root of path and creates it if
// needed. Paths outside every root fail with EROOT before any directory
// creation is attempted; a failed creation converts to the native error
// shape and aborts the caller's operation.
//
// The caches root is flagged for backup exclusion; other roots are not.
func (g *Guarantor) Ensure(ctx context.Context, path string) (paths.Root, error) {
	root, ok := g.policy.OwnerRoot(path)
	if !ok {
		return paths.Root{}, fserr.InvalidRoot(
			"path %q is outside the sandboxed roots (%s)", path, g.rootList())
	}

	exclude := root.Kind == paths.KindCaches
	if err := g.native.Mkdir(ctx, root.Path, exclude); err != nil {
		return paths.Root{}, fserr.FromNative(err)
	}

	return root, nil
}

func (g *Guarantor) rootList() string {
	roots := g.policy.Roots()
	names := make([]string, len(roots))
	for i, root := range roots {
		names[i] = root.Path
	}
	return strings.Join(names, ", ")
}
