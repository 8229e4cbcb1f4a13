// Package account holds the account records of a wallet, the account
// directory persisted as accounts.json and the single-use Builder that drives
// creation of the primary account.
//
// A Builder stages three secrets in memory: a 12-word passphrase used to seal
// files on disk, a 24-word recovery mnemonic and a TOTP secret. Nothing
// touches the disk until Build, which seals the TOTP secret and the derived
// private key and reports their identifiers. Finish zeroes every staged
// secret and must be called on every path, including abandoned signups.
package account
