package nostr

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// LocalSigner signs events with an in-process secp256k1 key.
type LocalSigner struct {
	priv   *btcec.PrivateKey
	pubkey string
}

// NewLocalSigner creates a signer from a 32-byte hex secret key.
func NewLocalSigner(secretHex string) (*LocalSigner, error) {
	raw, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(raw) != 32 {
		return nil, errors.New("secret key must be 32 bytes")
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return &LocalSigner{
		priv:   priv,
		pubkey: hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey())),
	}, nil
}

// PublicKey returns the hex x-only public key.
func (s *LocalSigner) PublicKey() string {
	return s.pubkey
}

// Sign finalizes the event: sets the author, computes the canonical id,
// and attaches a BIP-340 schnorr signature over it.
func (s *LocalSigner) Sign(_ context.Context, e *Event) error {
	e.PubKey = s.pubkey
	e.ID = e.ComputeID()

	hash, err := hex.DecodeString(e.ID)
	if err != nil {
		return fmt.Errorf("decode event id: %w", err)
	}
	sig, err := schnorr.Sign(s.priv, hash)
	if err != nil {
		return fmt.Errorf("sign event: %w", err)
	}
	e.Sig = hex.EncodeToString(sig.Serialize())
	return nil
}

// Verify Signer is implemented at compile time.
var _ Signer = (*LocalSigner)(nil)
