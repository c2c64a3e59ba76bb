// Package reencrypt migrates every stored journal entry of a user from one
// passphrase to another and then replaces the verification record.
//
// Run works in two sequential passes. The first pass opens each entry under
// the old passphrase and immediately seals it under the new one, keeping
// only the new envelope, so at most one plaintext is alive at a time.
// Entries that do not open are skipped and left untouched. The second pass
// writes the new envelopes one by one; the first failed write aborts the
// run. The verification record is replaced only after every write
// succeeded.
//
// If write N fails, entries 1..N-1 are already under the new passphrase, the
// rest are still under the old one, and the verification record still
// matches the old passphrase. An optional Snapshotter keeps a copy of the
// untouched entries so such a state can be repaired by hand.
package reencrypt
