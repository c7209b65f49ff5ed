package transfer

import (
	"strings"

	ethcmn "github.com/ethereum/go-ethereum/common"
)

// Validate checks every entry before anything is sent and stops at the first
// malformed one. It returns a *ValidationError.
func Validate(entries []Recipient) error {
	for i, r := range entries {
		if !IsAddress(r.Address) {
			return &ValidationError{Index: i, Address: r.Address, Amount: r.Amount, Rule: ErrInvalidAddress}
		}
		if r.Amount == nil || r.Amount.Sign() <= 0 {
			return &ValidationError{Index: i, Address: r.Address, Amount: r.Amount, Rule: ErrInvalidAmount}
		}
	}
	return nil
}

// IsAddress reports whether s is a 20-byte hex address. All-lower and
// all-upper forms are accepted as is, mixed case must be a valid EIP-55
// checksum.
func IsAddress(s string) bool {
	if !ethcmn.IsHexAddress(s) {
		return false
	}
	body := s
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		body = s[2:]
	}
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return ethcmn.HexToAddress(body).Hex()[2:] == body
}
