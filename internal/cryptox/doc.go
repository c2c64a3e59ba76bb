// Package cryptox implements the client-side cryptography of the logbook:
// passphrase verification records and the self-describing journal envelope.
//
// # Key derivation
//
// Every operation derives a fresh 256-bit key with PBKDF2-HMAC-SHA256 from
// the passphrase and a per-use 16-byte salt. Derived keys are wiped as soon
// as the single operation finishes; nothing is cached between calls.
//
// # Verification records
//
// A VerificationRecord lets the application check a passphrase without
// storing it. Two generations exist:
//
//   - legacy:  hex(SHA-256(passphrase)), no salt, no stretching
//   - current: hex(SHA-256(PBKDF2(passphrase, salt, VerifierIterations)))
//
// Verify reports false for a wrong passphrase and for a missing record alike.
// A successful Verify on a legacy record means the caller must replace it
// (see VerificationRecord.NeedsUpgrade).
//
// # Envelope format
//
// Current (version 1), base64 encoded:
//
//	offset 0   1 byte   version marker 0x01
//	offset 1   16 bytes salt
//	offset 17  12 bytes IV
//	offset 29  ciphertext || 16-byte GCM tag
//
// Legacy envelopes carry no marker (salt at offset 0) and were derived with
// LegacyIterations. Decrypt accepts a FormatHint; the hint always wins over
// sniffing the leading byte.
//
// Every decryption failure is reported as ErrCannotDecrypt.
package cryptox
