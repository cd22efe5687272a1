package hex

import (
	"encoding/hex"
	"errors"
	"strings"
)

const (
	HexPrefix = "0x"
)

var (
	ErrOddLength = errors.New("hex string has odd length")
)

// EncodeToHex generates a hex string based on the byte representation, with the '0x' prefix
func EncodeToHex(str []byte) string {
	builder := new(strings.Builder)
	builder.Grow(len(str)*2 + len(HexPrefix))

	builder.WriteString(HexPrefix)
	builder.WriteString(hex.EncodeToString(str))

	return builder.String()
}

// EncodeToString is a wrapper method for hex.EncodeToString
func EncodeToString(str []byte) string {
	return hex.EncodeToString(str)
}

// DecodeHex converts a hex string to a byte array, the '0x' prefix is optional
func DecodeHex(str string) ([]byte, error) {
	str = strings.TrimPrefix(str, HexPrefix)

	if len(str)%2 != 0 {
		return nil, ErrOddLength
	}

	return hex.DecodeString(str)
}

// IsEmptyCode reports whether a code string returned by a node carries no bytecode
func IsEmptyCode(code string) bool {
	return strings.TrimPrefix(code, HexPrefix) == ""
}
