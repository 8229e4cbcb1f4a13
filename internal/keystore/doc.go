// Package keystore seals secret byte strings to disk under a passphrase.
//
// Each sealed secret lives in its own file named by a freshly generated UUID.
// The file is a small JSON document:
//
//	{
//	  "id": "6f1c...",
//	  "version": 1,
//	  "crypto": {
//	    "cipher": "aes-256-gcm",
//	    "ciphertext": "<hex>",
//	    "nonce": "<hex>",
//	    "kdf": "argon2id",
//	    "kdfparams": {"time": 3, "memory": 65536, "threads": 4, "salt": "<hex>"}
//	  }
//	}
//
// The key is derived with Argon2id and the secret encrypted with AES-256-GCM
// using the identifier as associated data, so a file renamed to another
// identifier no longer opens. Encryption happens fully in memory and the file
// is written once; a failed seal leaves nothing behind.
//
// Errors carry common kinds: IoError, CryptoError, NotFound and
// AuthenticationFailed (wrong passphrase, detected by the GCM tag).
package keystore
