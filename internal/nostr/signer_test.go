package nostr

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

func TestNewLocalSigner_RejectsBadKeys(t *testing.T) {
	if _, err := NewLocalSigner("not hex"); err == nil {
		t.Error("non-hex secret must be rejected")
	}
	if _, err := NewLocalSigner("abcd"); err == nil {
		t.Error("short secret must be rejected")
	}
}

func TestLocalSigner_SignaturesVerify(t *testing.T) {
	signer, err := NewLocalSigner(strings.Repeat("01", 32))
	if err != nil {
		t.Fatal(err)
	}
	if len(signer.PublicKey()) != 64 {
		t.Fatalf("pubkey = %q, want 32-byte x-only hex", signer.PublicKey())
	}

	ev := &Event{
		Kind:      KindReaction,
		CreatedAt: 1700000000,
		Content:   "+",
		Tags:      []Tag{{"e", "abc"}},
	}
	if err := signer.Sign(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	if ev.PubKey != signer.PublicKey() {
		t.Errorf("event pubkey = %q, want %q", ev.PubKey, signer.PublicKey())
	}
	if ev.ID != ev.ComputeID() {
		t.Error("signed event id must be the canonical id")
	}

	hash, err := hex.DecodeString(ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	sigBytes, err := hex.DecodeString(ev.Sig)
	if err != nil {
		t.Fatal(err)
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		t.Fatalf("parse signature: %v", err)
	}
	pubBytes, err := hex.DecodeString(ev.PubKey)
	if err != nil {
		t.Fatal(err)
	}
	pub, err := schnorr.ParsePubKey(pubBytes)
	if err != nil {
		t.Fatalf("parse pubkey: %v", err)
	}
	if !sig.Verify(hash, pub) {
		t.Error("signature must verify against the event id and author key")
	}
}
