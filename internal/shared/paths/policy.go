package paths

import (
	"strings"

	"github.com/getsiphon/siphonfs/internal/fserr"
)

// Platform selects which base directories exist.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// RootKind identifies a sandboxed root by its base directory.
type RootKind string

const (
	KindCaches    RootKind = "caches"
	KindDocuments RootKind = "documents"
	KindLibrary   RootKind = "library"
)

// SuffixPrefix is the application-scoped directory name prefix appended to
// each base directory.
const SuffixPrefix = "siphon-data-"

// Root is one immutable sandboxed root directory.
type Root struct {
	Kind RootKind
	Path string
}

// BaseDirs holds the platform-provided base directories. Library is ignored
// on Android.
type BaseDirs struct {
	Caches    string
	Documents string
	Library   string
}

// Policy computes sandboxed roots for one application and decides path
// ownership. Roots are computed once at construction and never change.
type Policy struct {
	appID    string
	platform Platform
	roots    []Root
}

// NewPolicy builds the root policy for an application. The identifier is
// required; an empty one fails fast with ECONFIG.
func NewPolicy(appID string, platform Platform, bases BaseDirs) (*Policy, error) {
	if appID == "" {
		return nil, fserr.Config("application identifier not set")
	}

	p := &Policy{appID: appID, platform: platform}

	// Fixed ownership priority: caches, documents, then library on iOS.
	p.roots = append(p.roots,
		Root{Kind: KindCaches, Path: sandboxedRoot(bases.Caches, appID)},
		Root{Kind: KindDocuments, Path: sandboxedRoot(bases.Documents, appID)},
	)
	if platform == PlatformIOS {
		p.roots = append(p.roots, Root{Kind: KindLibrary, Path: sandboxedRoot(bases.Library, appID)})
	}

	return p, nil
}

func sandboxedRoot(base, appID string) string {
	sep := "/"
	if strings.HasSuffix(base, "/") {
		sep = ""
	}
	return base + sep + SuffixPrefix + appID
}

// SandboxedRoot returns the application-scoped variant of an arbitrary base
// directory.
func (p *Policy) SandboxedRoot(base string) string {
	return sandboxedRoot(base, p.appID)
}

// OwnerRoot normalizes a path and returns the first configured root whose
// path literally prefixes it. The comparison is a plain string-prefix test,
// not a segment-aware one.
func (p *Policy) OwnerRoot(path string) (Root, bool) {
	normalized := Normalize(path)
	for _, root := range p.roots {
		if strings.HasPrefix(normalized, root.Path) {
			return root, true
		}
	}
	return Root{}, false
}

// Roots returns the configured roots in ownership-priority order.
func (p *Policy) Roots() []Root {
	out := make([]Root, len(p.roots))
	copy(out, p.roots)
	return out
}

// Root returns the configured root of the given kind, if the platform has it.
func (p *Policy) Root(kind RootKind) (Root, bool) {
	for _, root := range p.roots {
		if root.Kind == kind {
			return root, true
		}
	}
	return Root{}, false
}

// AppID returns the application identifier the policy was built for.
func (p *Policy) AppID() string {
	return p.appID
}

// Platform returns the platform the policy was built for.
func (p *Policy) Platform() Platform {
	return p.platform
}
