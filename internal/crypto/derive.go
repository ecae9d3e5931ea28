package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160"
)

const (
	// ScalarLen is the size of a big-endian secp256k1 private scalar.
	ScalarLen = 32
	// ScalarHexLen is the canonical hex width of a scalar, leading zeros kept.
	ScalarHexLen = 2 * ScalarLen
	// CompressedLen is 0x02/0x03 prefix + 32-byte x-coordinate.
	CompressedLen = 1 + 32
	// DigestLen is RIPEMD-160(SHA-256(compressed point)).
	DigestLen = ripemd160.Size
	// DigestHexLen is the hex width of a Digest.
	DigestHexLen = 2 * DigestLen
)

// Errors
var (
	ErrZeroScalar     = errors.New("scalar is zero")
	ErrScalarOverflow = errors.New("scalar is not below the curve order")
	ErrScalarLength   = errors.New("scalar must be 64 hex characters")
	ErrInvalidDigest  = errors.New("digest must be 40 hex characters")
)

// Digest is the 20-byte public key fingerprint.
type Digest [DigestLen]byte

// String returns the lowercase hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Deriver turns private scalars into digests. It keeps its hashers and
// scratch buffers between calls, so a Deriver must not be shared between
// goroutines; give each worker its own.
type Deriver struct {
	sha    hash.Hash
	rip    hash.Hash
	shaBuf [sha256.Size]byte
	ripBuf [DigestLen]byte
}

// NewDeriver creates a Deriver with fresh hash state.
func NewDeriver() *Deriver {
	return &Deriver{
		sha: sha256.New(),
		rip: ripemd160.New(),
	}
}

// Derive computes RIPEMD-160(SHA-256(compressed(k*G))) for the big-endian
// scalar k. Zero and out-of-range scalars are rejected with ErrZeroScalar
// and ErrScalarOverflow.
func (d *Deriver) Derive(scalar *[ScalarLen]byte) (Digest, error) {
	var pub [CompressedLen]byte
	if err := CompressedPoint(scalar, &pub); err != nil {
		return Digest{}, err
	}
	return d.hash160(pub[:]), nil
}

// DeriveHex decodes a 64 character hex scalar and derives its digest.
func (d *Deriver) DeriveHex(scalarHex string) (Digest, error) {
	scalar, err := DecodeScalar(scalarHex)
	if err != nil {
		return Digest{}, err
	}
	return d.Derive(&scalar)
}

func (d *Deriver) hash160(data []byte) Digest {
	d.sha.Reset()
	d.sha.Write(data)
	inner := d.sha.Sum(d.shaBuf[:0])

	d.rip.Reset()
	d.rip.Write(inner)
	sum := d.rip.Sum(d.ripBuf[:0])

	var out Digest
	copy(out[:], sum)
	return out
}

// Derive is a convenience wrapper that allocates a Deriver per call.
func Derive(scalarHex string) (Digest, error) {
	return NewDeriver().DeriveHex(scalarHex)
}

// CompressedPoint multiplies the secp256k1 base point by scalar and writes
// the 33-byte compressed encoding into out.
func CompressedPoint(scalar *[ScalarLen]byte, out *[CompressedLen]byte) error {
	var k secp256k1.ModNScalar
	if overflow := k.SetBytes(scalar); overflow != 0 {
		return ErrScalarOverflow
	}
	if k.IsZero() {
		return ErrZeroScalar
	}

	// The public point is computed explicitly; nothing else populates it.
	var p secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&k, &p)
	p.ToAffine()

	pub := secp256k1.NewPublicKey(&p.X, &p.Y)
	copy(out[:], pub.SerializeCompressed())
	return nil
}

// DecodeScalar decodes exactly 64 hex characters into a big-endian scalar.
func DecodeScalar(scalarHex string) ([ScalarLen]byte, error) {
	var out [ScalarLen]byte
	if len(scalarHex) != ScalarHexLen {
		return out, fmt.Errorf("%w: got %d", ErrScalarLength, len(scalarHex))
	}
	if _, err := hex.Decode(out[:], []byte(scalarHex)); err != nil {
		return out, fmt.Errorf("invalid scalar hex: %w", err)
	}
	return out, nil
}

// ParseDigest decodes a 40 character hex digest (with or without 0x).
// Other lengths are rejected rather than truncated or padded.
func ParseDigest(s string) (Digest, error) {
	var out Digest
	h := strings.TrimSpace(s)
	if len(h) >= 2 && (h[0:2] == "0x" || h[0:2] == "0X") {
		h = h[2:]
	}
	if len(h) != DigestHexLen {
		return out, fmt.Errorf("%w: got %d hex chars", ErrInvalidDigest, len(h))
	}
	if _, err := hex.Decode(out[:], []byte(h)); err != nil {
		return out, fmt.Errorf("invalid digest hex: %w", err)
	}
	return out, nil
}
