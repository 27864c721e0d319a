package utils

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Wire formats mirrored from the chain: bounty IDs are bytes32, addresses
// are 20 bytes, both hex-encoded with a 0x prefix, case-insensitive.
var (
	bountyIDPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	addressPattern  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// weiPerToken is 10^18, the base-unit scale of the payment token.
var weiPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// maxUint256 bounds amounts to the width of the on-chain integer type.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// IsValidBountyID reports whether s is a bytes32 hex string ("0x" + 64 hex).
func IsValidBountyID(s string) bool {
	return bountyIDPattern.MatchString(s)
}

// IsValidAddress reports whether s is an address hex string ("0x" + 40 hex).
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// NormalizeHex lowercases 0x-prefixed strings so lookups are
// case-insensitive. Non-hex-prefixed input passes through untouched.
func NormalizeHex(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strings.ToLower(s)
	}
	return s
}

// IsValidAmount reports whether s is a non-negative decimal integer within
// uint256 range. Out-of-range or non-numeric amounts are rejected at
// creation time, never clamped.
func IsValidAmount(s string) bool {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return false
	}
	return n.Sign() >= 0 && n.Cmp(maxUint256) <= 0
}

// BaseUnitsToDisplay converts a wei amount string to a display-unit float.
// The division happens in exact rational arithmetic before the single
// narrowing to float64. Malformed input yields 0.0: the display value is
// non-authoritative, so a soft fail beats rejecting the row.
func BaseUnitsToDisplay(baseUnits string) float64 {
	wei, ok := new(big.Int).SetString(baseUnits, 10)
	if !ok {
		return 0.0
	}
	f, _ := new(big.Rat).SetFrac(wei, weiPerToken).Float64()
	return f
}

// DisplayToBaseUnits converts a display-unit amount back to a wei string.
// Tooling-only helper, not on the lifecycle path. Malformed input yields "0".
func DisplayToBaseUnits(display float64) string {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(display, 'g', -1, 64))
	if !ok || r.Sign() < 0 {
		return "0"
	}
	r.Mul(r, new(big.Rat).SetInt(weiPerToken))
	return new(big.Int).Quo(r.Num(), r.Denom()).String()
}
