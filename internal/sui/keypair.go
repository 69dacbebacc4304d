package sui

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/block-vision/sui-go-sdk/models"
	"github.com/block-vision/sui-go-sdk/signer"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Signature scheme flag for Ed25519.
const flagEd25519 byte = 0x00

// Keypair is an Ed25519 Sui signing key.
type Keypair struct {
	s *signer.Signer
}

// NewKeypairFromSeed builds a keypair from a 32-byte Ed25519 seed.
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Keypair{s: signer.NewSigner(seed)}, nil
}

// NewKeypairFromMnemonic derives the first Ed25519 account (m/44'/784'/0'/0'/0') of a BIP-39 phrase.
func NewKeypairFromMnemonic(phrase string) (*Keypair, error) {
	s, err := signer.NewSignertWithMnemonic(strings.Join(strings.Fields(phrase), " "))
	if err != nil {
		return nil, fmt.Errorf("mnemonic: %w", err)
	}
	return &Keypair{s: s}, nil
}

// ParseKeypair accepts a hex seed (with or without 0x), a keystore entry
// (base64 of flag||seed, as found in sui.keystore) or a mnemonic phrase.
func ParseKeypair(s string) (*Keypair, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty private key")
	}
	if len(strings.Fields(s)) >= 12 {
		return NewKeypairFromMnemonic(s)
	}
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(h) == 2*ed25519.SeedSize {
		if seed, err := hexutil.Decode("0x" + h); err == nil {
			return NewKeypairFromSeed(seed)
		}
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.New("private key is neither hex, base64 nor a mnemonic")
	}
	switch len(raw) {
	case ed25519.SeedSize + 1:
		if raw[0] != flagEd25519 {
			return nil, fmt.Errorf("unsupported key scheme flag 0x%02x", raw[0])
		}
		return NewKeypairFromSeed(raw[1:])
	case ed25519.SeedSize:
		return NewKeypairFromSeed(raw)
	}
	return nil, fmt.Errorf("unexpected key length %d", len(raw))
}

func (k *Keypair) PublicKey() ed25519.PublicKey {
	return k.s.PubKey
}

// Address is 0x + hex(blake2b-256(flag || pubkey)).
func (k *Keypair) Address() string {
	return strings.ToLower(k.s.Address)
}

// SignTransaction signs base64 tx bytes under the transaction intent and returns the
// serialized signature base64(flag || sig || pubkey) expected by sui_executeTransactionBlock.
func (k *Keypair) SignTransaction(txBytesB64 string) (string, error) {
	if _, err := base64.StdEncoding.DecodeString(txBytesB64); err != nil {
		return "", fmt.Errorf("decode tx bytes: %w", err)
	}
	meta := models.TxnMetaData{TxBytes: txBytesB64}
	signed := meta.SignSerializedSigWith(k.s.PriKey)
	if signed == nil || signed.Signature == "" {
		return "", errors.New("sign transaction: empty signature")
	}
	return signed.Signature, nil
}
