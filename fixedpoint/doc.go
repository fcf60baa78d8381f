// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fixedpoint implements 18-decimal fixed point arithmetic with an
// explicit rounding direction on every operation.
//
// All values are *big.Int scaled by WAD (1e18). Results are freshly
// allocated; arguments are never modified.
package fixedpoint
