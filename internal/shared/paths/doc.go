// Package paths provides path normalization and the sandboxed root policy.
//
// Every application gets an isolated subdirectory under each platform base
// directory (caches, documents, and on iOS the library directory). The policy
// computes those sandboxed roots once at construction and decides which root,
// if any, owns a given path.
//
// # Usage
//
//	policy, err := paths.NewPolicy("com.example.notes", paths.PlatformIOS, bases)
//	if err != nil {
//	    return err
//	}
//
//	root, ok := policy.OwnerRoot("/data/caches/siphon-data-com.example.notes/tmp.txt")
//	if ok {
//	    // path is inside the sandbox owned by root
//	}
package paths
