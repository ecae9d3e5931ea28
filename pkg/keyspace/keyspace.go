// Package keyspace maps 64-bit search offsets onto 256-bit scalars and
// splits a search interval between workers.
package keyspace

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// HexLen is the fixed width of a formatted scalar.
const HexLen = 64

// Errors
var (
	ErrBaseTooLong  = errors.New("base must be at most 64 hex characters")
	ErrBaseOverflow = errors.New("base plus range end overflows 256 bits")
)

// Space is a fixed 256-bit base that 64-bit offsets are added to. The base
// supplies the high bits held constant for a whole run.
type Space struct {
	base uint256.Int
}

// NewSpace returns a Space rooted at base.
func NewSpace(base *uint256.Int) *Space {
	s := &Space{}
	s.base.Set(base)
	return s
}

// ParseBase parses a hex base (optional 0x, leading zeros allowed).
func ParseBase(s string) (*uint256.Int, error) {
	h := strings.TrimSpace(s)
	if len(h) >= 2 && (h[0:2] == "0x" || h[0:2] == "0X") {
		h = h[2:]
	}
	if len(h) > HexLen {
		return nil, fmt.Errorf("%w: got %d", ErrBaseTooLong, len(h))
	}
	if len(h) == 0 {
		return new(uint256.Int), nil
	}
	if len(h)%2 != 0 {
		h = "0" + h
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("invalid base hex: %w", err)
	}
	return new(uint256.Int).SetBytes(b), nil
}

// Base returns a copy of the base.
func (s *Space) Base() *uint256.Int {
	return new(uint256.Int).Set(&s.base)
}

// CheckEnd returns ErrBaseOverflow if base+end does not fit in 256 bits.
func (s *Space) CheckEnd(end uint64) error {
	if _, overflow := new(uint256.Int).AddOverflow(&s.base, uint256.NewInt(end)); overflow {
		return ErrBaseOverflow
	}
	return nil
}

// Embed writes base+offset into dst as a big-endian 32-byte scalar.
func (s *Space) Embed(offset uint64, dst *[32]byte) {
	var v uint256.Int
	v.AddUint64(&s.base, offset)
	v.WriteToArray32(dst)
}

// Format returns base+offset as 64 lowercase hex digits.
func (s *Space) Format(offset uint64) string {
	var raw [32]byte
	var out [HexLen]byte
	s.Embed(offset, &raw)
	hex.Encode(out[:], raw[:])
	return string(out[:])
}
