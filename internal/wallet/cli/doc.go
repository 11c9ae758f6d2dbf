// Package cli implements the interactive wallet terminal client.
//
// The REPL (runREPL) dispatches typed commands to methods on App, which
// wires the auth state machines, the sync engine, the transfer pipeline and
// the profile manager behind a prompt that reflects login state and server
// reachability.
//
// Interactive input goes through small helpers with test seams
// (getSimpleText, getPassword, getAmount, readPassword) so command flows
// can be exercised without a terminal.
package cli
