// Package cli provides the interactive logbook command-line client.
//
// App wires the journal service and the unlocked session into a REPL:
//
//   - setup / unlock / lock       manage the passphrase session
//   - add / list / show           write and read entries
//   - rekey                       change the passphrase and re-encrypt
//   - status / help / exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
