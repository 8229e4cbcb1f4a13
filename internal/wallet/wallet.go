// Package wallet derives the signing key and public address of an account
// from its recovery mnemonic along the standard Ethereum path m/44'/60'/0'/0/0.
package wallet

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/mnemonic"
	"github.com/ethereum/go-ethereum/crypto"
)

const h = hdkeychain.HardenedKeyStart

// Path is the BIP-44 path of the first external Ethereum account.
var Path = []uint32{44 + h, 60 + h, 0 + h, 0, 0}

// Key is a derived private key with its address.
type Key struct {
	priv    []byte
	address string
}

// Address is the lowercase 0x-prefixed hex address.
func (k *Key) Address() string { return k.address }

// Bytes exposes the 32-byte private scalar. The slice is shared with the Key
// and is zeroed by Wipe.
func (k *Key) Bytes() []byte { return k.priv }

// Wipe zeroes the private key.
func (k *Key) Wipe() {
	common.WipeByteArray(k.priv)
}

// Derive validates phrase against the generator's wordlist and derives the
// account key from its seed (empty BIP-39 password).
func Derive(g *mnemonic.Generator, phrase []byte) (*Key, error) {
	seed, err := g.Seed(string(phrase), "")
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(seed)

	return FromSeed(seed)
}

// FromSeed walks Path from the master key of seed.
func FromSeed(seed []byte) (*Key, error) {
	ext, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, common.NewError(common.KindCryptoError, "master key", err)
	}

	for _, idx := range Path {
		child, err := ext.Derive(idx)
		ext.Zero()
		if err != nil {
			return nil, common.NewError(common.KindCryptoError, "derive child key", err)
		}
		ext = child
	}
	defer ext.Zero()

	ec, err := ext.ECPrivKey()
	if err != nil {
		return nil, common.NewError(common.KindCryptoError, "private key", err)
	}
	priv := ec.Serialize()
	ec.Zero()

	address, err := AddressOf(priv)
	if err != nil {
		common.WipeByteArray(priv)
		return nil, err
	}
	return &Key{priv: priv, address: address}, nil
}

// AddressOf computes the address of a raw secp256k1 private key.
func AddressOf(priv []byte) (string, error) {
	sk, err := crypto.ToECDSA(priv)
	if err != nil {
		return "", common.NewError(common.KindCryptoError, "invalid private key", err)
	}
	addr := crypto.PubkeyToAddress(sk.PublicKey)
	sk.D.SetInt64(0)
	return "0x" + hex.EncodeToString(addr.Bytes()), nil
}
