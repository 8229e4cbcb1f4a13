// Package user implements the wallet's user store: the single in-memory
// session over the account directory, the signup flow that builds the
// primary account, and login by passphrase plus optional TOTP code.
//
// The store guarantees that its directory never holds more than one primary
// account. Reads (Exists, ListAccounts, History, Bootstrap) share a lock;
// everything else is exclusive, including prompts during Login.
//
// On-disk layout under the storage root:
//
//	accounts.json   account directory
//	keystore/<id>   sealed private keys
//	totp/<id>       sealed TOTP secrets
package user
