// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import "github.com/luxfi/amm/pool"

var (
	ErrInputTokenNotFound  = pool.NewError(pool.KindLookup, "Input token not found on pool")
	ErrOutputTokenNotFound = pool.NewError(pool.KindLookup, "Output token not found on pool")

	ErrInvalidInput         = pool.NewError(pool.KindCallerError, "invalid operation input")
	ErrAmountOverflow       = pool.NewError(pool.KindCallerError, "amount does not fit uint256")
	ErrTradeAmountTooSmall  = pool.NewError(pool.KindCallerError, "TradeAmountTooSmall")
	ErrAllZeroInputs        = pool.NewError(pool.KindCallerError, "All zero inputs for single token add")
	ErrMultipleInputs       = pool.NewError(pool.KindCallerError, "Multiple non-zero inputs for single token add")
	ErrAmountInAboveMax     = pool.NewError(pool.KindCallerError, "AmountInAboveMax")
	ErrAmountOutBelowMin    = pool.NewError(pool.KindCallerError, "AmountOutBelowMin")
	ErrBptAmountOutBelowMin = pool.NewError(pool.KindCallerError, "BptAmountOutBelowMin")
	ErrBptAmountInAboveMax  = pool.NewError(pool.KindCallerError, "BptAmountInAboveMax")

	ErrInvariantRatioAboveMax = pool.NewError(pool.KindCallerError, "InvariantRatioAboveMax")
	ErrInvariantRatioBelowMin = pool.NewError(pool.KindCallerError, "InvariantRatioBelowMin")
	ErrBalanceUnderflow       = pool.NewError(pool.KindPoolUnsafe, "pool balance would go negative")

	ErrUnbalancedLiquidityNotSupported = pool.NewError(pool.KindUnsupported, "DoesNotSupportUnbalancedLiquidity")
	ErrUnsupportedAddKind              = pool.NewError(pool.KindUnsupported, "Unsupported AddLiquidity Kind")
	ErrUnsupportedRemoveKind           = pool.NewError(pool.KindUnsupported, "Unsupported RemoveLiquidity Kind")

	ErrBeforeSwapHookFailed            = pool.NewError(pool.KindHookVeto, "before-swap hook failed")
	ErrAfterSwapHookFailed             = pool.NewError(pool.KindHookVeto, "after-swap hook failed")
	ErrBeforeAddLiquidityHookFailed    = pool.NewError(pool.KindHookVeto, "before-add-liquidity hook failed")
	ErrAfterAddLiquidityHookFailed     = pool.NewError(pool.KindHookVeto, "after-add-liquidity hook failed")
	ErrBeforeRemoveLiquidityHookFailed = pool.NewError(pool.KindHookVeto, "before-remove-liquidity hook failed")
	ErrAfterRemoveLiquidityHookFailed  = pool.NewError(pool.KindHookVeto, "after-remove-liquidity hook failed")
)
