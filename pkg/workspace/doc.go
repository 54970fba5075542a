// Package workspace keeps the compilations of open documents and serves
// deployment graphs for them.
//
// A [Manager] is the session service a request surface talks to. Opening a
// document compiles it together with its local modules; the result is kept
// until the document is closed or one of its files changes. Graphs are never
// stored: every [Manager.DeploymentGraph] call builds a fresh one from the
// current compilation.
//
// [Manager.Watch] observes the directories of all open compilations and
// recompiles affected documents after a debounce window, so that a client
// asking again after an edit sees the new state.
package workspace
