// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"strings"

	"github.com/luxfi/geth/common"
)

// SameAddress compares two token or pool identifiers. Hex addresses are
// compared as 20-byte values, anything else case-insensitively.
func SameAddress(a, b string) bool {
	if common.IsHexAddress(a) && common.IsHexAddress(b) {
		return common.HexToAddress(a) == common.HexToAddress(b)
	}
	return strings.EqualFold(a, b)
}

// IndexOf returns the index of token in tokens, or -1.
func IndexOf(tokens []string, token string) int {
	for i, t := range tokens {
		if SameAddress(t, token) {
			return i
		}
	}
	return -1
}
