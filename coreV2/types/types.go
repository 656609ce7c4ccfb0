package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const (
	HashLength    = 32
	AddressLength = 20
)

/////////// Address

// Address is an opaque 20 byte handle for accounts, assets and contracts.
type Address [AddressLength]byte

// ZeroAddress is the null identity. Locked liquidity is parked here.
var ZeroAddress = Address{}

func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}
func BigToAddress(b *big.Int) Address { return BytesToAddress(b.Bytes()) }
func HexToAddress(s string) Address   { return BytesToAddress(FromHex(s, "Mx")) }

// IsHexAddress verifies whether a string can represent a valid hex-encoded
// address or not.
func IsHexAddress(s string) bool {
	if hasHexPrefix(s, "Mx") {
		s = s[2:]
	}
	return len(s) == 2*AddressLength && isHex(s)
}

func (a Address) Bytes() []byte { return a[:] }
func (a Address) Big() *big.Int { return new(big.Int).SetBytes(a[:]) }
func (a Address) IsZero() bool  { return a == ZeroAddress }

func (a Address) Hex() string {
	return "Mx" + hex.EncodeToString(a[:])
}

// String implements the stringer interface and is used also by the logger.
func (a Address) String() string {
	return a.Hex()
}

// Sets the address to the value of b. If b is larger than len(a) it will be cropped from the left.
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// MarshalText returns the hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText parses an address in hex syntax.
func (a *Address) UnmarshalText(input []byte) error {
	s := string(input)
	if !IsHexAddress(s) {
		return fmt.Errorf("invalid address %q", s)
	}
	*a = HexToAddress(s)
	return nil
}

func (a Address) Compare(a2 Address) int {
	return bytes.Compare(a[:], a2[:])
}

// SortAddresses returns the pair in canonical (byte) order.
func SortAddresses(a, b Address) (Address, Address) {
	if a.Compare(b) < 0 {
		return a, b
	}
	return b, a
}

func FromHex(s string, prefix string) []byte {
	if len(s) > 1 {
		if s[0:2] == prefix || strings.EqualFold(s[0:2], "0x") {
			s = s[2:]
		}
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	h, _ := hex.DecodeString(s)
	return h
}

func hasHexPrefix(str, prefix string) bool {
	return len(str) >= 2 && str[0:2] == prefix
}

func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isHex(str string) bool {
	if len(str)%2 != 0 {
		return false
	}
	for _, c := range []byte(str) {
		if !isHexCharacter(c) {
			return false
		}
	}
	return true
}
