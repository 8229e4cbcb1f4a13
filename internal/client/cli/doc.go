// Package cli provides the interactive walletkeeper front end.
//
// The REPL turns commands into JSON-RPC requests and sends them through a
// dispatch.Client, backed either by the in-process bridge (local mode) or by
// the gRPC caller (remote mode). Failures are rendered inline and never end
// the loop.
//
// Commands:
//   - signup: create the primary wallet (passphrase, recovery phrase, 2FA)
//   - login / logout
//   - list, exists, add, history
//   - help, exit | quit
//
// In local mode the store itself prompts for login secrets on the shared
// terminal; in remote mode the cli prompts and sends them as parameters.
package cli
