// Package manager holds the per-session payee manager state.
//
// State changes only through Reduce. A Store wraps the reducer for one
// mounted session and notifies subscribers after every dispatch; a Loader
// performs the session's payee retrieval and dispatches its result unless the
// session has been closed or a newer load has superseded it. Registry owns
// the sessions and expires idle ones.
//
// The reducer records the active sort field and direction but does not
// reorder the payee list. Consumers derive an ordered view with Sorted.
package manager
