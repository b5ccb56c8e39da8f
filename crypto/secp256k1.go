package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/eth2030/eth2030/core/types"
)

// secp256k1N is the order of the secp256k1 curve.
var secp256k1N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

// secp256k1halfN is half the order, used for Homestead low-S check.
var secp256k1halfN = new(big.Int).Div(secp256k1N, big.NewInt(2))

// s256 is the secp256k1 curve, used wherever code needs a generic
// elliptic.Curve (address/pubkey (de)compression, ValidateSignature).
var s256 = S256()

// GenerateKey generates a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(s256, rand.Reader)
}

// Sign calculates an ECDSA signature (65 bytes [R || S || V]) over a
// 32-byte hash. V is the recovery ID (0 or 1), found by trial recovery:
// plain ecdsa.Sign does not report which of the two candidate points is
// the signer's, so both are tried against the known public key.
func Sign(hash []byte, prv *ecdsa.PrivateKey) ([]byte, error) {
	if len(hash) != 32 {
		return nil, errors.New("hash must be 32 bytes")
	}
	if prv == nil || prv.D == nil {
		return nil, errors.New("nil private key")
	}
	r, s, err := ecdsa.Sign(rand.Reader, prv, hash)
	if err != nil {
		return nil, err
	}
	if s.Cmp(secp256k1halfN) > 0 {
		s = new(big.Int).Sub(secp256k1N, s)
	}

	v, err := recoveryID(hash, r, s, &prv.PublicKey)
	if err != nil {
		return nil, err
	}

	sig := make([]byte, 65)
	rBytes := r.Bytes()
	sBytes := s.Bytes()
	copy(sig[32-len(rBytes):32], rBytes)
	copy(sig[64-len(sBytes):64], sBytes)
	sig[64] = v
	return sig, nil
}

// recoveryID finds the raw recovery ID (0 or 1) that recovers pub from
// (hash, r, s), by trying both candidates.
func recoveryID(hash []byte, r, s *big.Int, pub *ecdsa.PublicKey) (byte, error) {
	for v := byte(0); v < 2; v++ {
		qx, qy, err := recoverPublicKey(hash, r, s, v)
		if err != nil {
			continue
		}
		if qx.Cmp(pub.X) == 0 && qy.Cmp(pub.Y) == 0 {
			return v, nil
		}
	}
	return 0, errors.New("signature does not recover to the signing key")
}

// Ecrecover recovers the uncompressed public key from hash and signature.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	pub, err := SigToPub(hash, sig)
	if err != nil {
		return nil, err
	}
	return FromECDSAPub(pub), nil
}

// SigToPub recovers the public key from a 32-byte hash and 65-byte
// signature [R || S || V], V being the raw recovery ID (0 or 1).
func SigToPub(hash, sig []byte) (*ecdsa.PublicKey, error) {
	if len(sig) != 65 {
		return nil, errors.New("signature must be 65 bytes [R || S || V]")
	}
	if len(hash) != 32 {
		return nil, errors.New("hash must be 32 bytes")
	}
	v := sig[64]
	if v > 1 {
		return nil, errors.New("invalid recovery id")
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if r.Sign() == 0 || r.Cmp(secp256k1N) >= 0 || s.Sign() == 0 || s.Cmp(secp256k1N) >= 0 {
		return nil, errors.New("invalid signature")
	}

	qx, qy, err := recoverPublicKey(hash, r, s, v)
	if err != nil {
		return nil, err
	}
	return &ecdsa.PublicKey{Curve: s256, X: qx, Y: qy}, nil
}

// ValidateSignature verifies that the given signature (64 bytes, no V) is valid
// for the provided 65-byte uncompressed public key and 32-byte hash.
func ValidateSignature(pubkey, hash, sig []byte) bool {
	if len(sig) != 64 {
		return false
	}
	if len(hash) != 32 {
		return false
	}
	if len(pubkey) != 65 || pubkey[0] != 0x04 {
		return false
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	x := new(big.Int).SetBytes(pubkey[1:33])
	y := new(big.Int).SetBytes(pubkey[33:65])
	pub := &ecdsa.PublicKey{Curve: s256, X: x, Y: y}
	return ecdsa.Verify(pub, hash, r, s)
}

// ValidateSignatureValues checks r, s, v for validity per Homestead rules.
// If homestead is true, s must be in the lower half of the curve order.
func ValidateSignatureValues(v byte, r, s *big.Int, homestead bool) bool {
	if r == nil || s == nil {
		return false
	}
	if v > 1 {
		return false
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	if r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	if homestead && s.Cmp(secp256k1halfN) > 0 {
		return false
	}
	return true
}

// PubkeyToAddress derives the Ethereum address from a public key.
// Address = Keccak256(pubkey[1:])[12:]
func PubkeyToAddress(p ecdsa.PublicKey) types.Address {
	pubBytes := FromECDSAPub(&p)
	if pubBytes == nil {
		return types.Address{}
	}
	hash := Keccak256(pubBytes[1:])
	return types.BytesToAddress(hash[12:])
}

// CompressPubkey compresses a 65-byte uncompressed public key to 33 bytes.
func CompressPubkey(pubkey *ecdsa.PublicKey) []byte {
	if pubkey == nil || pubkey.X == nil || pubkey.Y == nil {
		return nil
	}
	return elliptic.MarshalCompressed(s256, pubkey.X, pubkey.Y)
}

// DecompressPubkey decompresses a 33-byte compressed public key.
//
// elliptic.UnmarshalCompressed's generic fallback path hardcodes the NIST
// a=-3 curve equation, which is wrong for secp256k1 (a=0); the correct
// y²=x³+7 square root is computed directly instead.
func DecompressPubkey(pubkey []byte) (*ecdsa.PublicKey, error) {
	if len(pubkey) != 33 {
		return nil, errors.New("invalid compressed public key length")
	}
	if pubkey[0] != 2 && pubkey[0] != 3 {
		return nil, errors.New("invalid compressed public key prefix")
	}
	curve := s256.(*secp256k1Curve)
	x := new(big.Int).SetBytes(pubkey[1:])
	if x.Cmp(curve.p) >= 0 {
		return nil, errors.New("invalid compressed public key")
	}
	y := computeY(x, curve.p)
	if y == nil {
		return nil, errors.New("invalid compressed public key")
	}
	if byte(y.Bit(0)) != pubkey[0]&1 {
		y.Sub(curve.p, y)
	}
	if !curve.IsOnCurve(x, y) {
		return nil, errors.New("invalid compressed public key")
	}
	return &ecdsa.PublicKey{Curve: s256, X: x, Y: y}, nil
}

// FromECDSAPub marshals a public key to 65-byte uncompressed format.
func FromECDSAPub(pub *ecdsa.PublicKey) []byte {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil
	}
	return elliptic.Marshal(pub.Curve, pub.X, pub.Y)
}
