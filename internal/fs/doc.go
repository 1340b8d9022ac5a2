// Package fs is the public surface of the sandboxed filesystem service.
//
// Every operation follows the same two-phase protocol: a guard phase that
// resolves the target path's owning sandboxed root and ensures it exists on
// disk, then a delegate phase that invokes the corresponding primitive on
// the native collaborator and reshapes the result. Argument validation
// (encodings, paths) happens synchronously before either phase.
//
// Downloads additionally allocate a job id from the job registry, attach
// begin/progress event subscriptions before the transfer starts, and release
// them exactly once when the transfer settles.
package fs
