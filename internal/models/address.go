package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress is the all-zero account. It can never hold tokens or own the ledger.
var ZeroAddress = common.Address{}.Hex()

var ErrInvalidAddress = errors.New("invalid address")

// ParseAddress validates a 0x-prefixed 20-byte hex address.
func ParseAddress(address string) (common.Address, error) {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return common.HexToAddress(address), nil
}

// NormalizeAddress returns the EIP-55 checksummed form of address, so every
// casing of the same account is stored and reported identically.
func NormalizeAddress(address string) (string, error) {
	parsed, err := ParseAddress(address)
	if err != nil {
		return "", err
	}
	return parsed.Hex(), nil
}

// IsZeroAddress reports whether address names the zero account.
func IsZeroAddress(address string) bool {
	return common.HexToAddress(address) == common.Address{}
}
