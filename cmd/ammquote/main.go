// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// ammquote quotes a single swap against a JSON pool snapshot.
//
//	ammquote -snapshot pool.json -in <token> -out <token> -amount <raw> [-exact-out] [-write next.json]
package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/joho/godotenv"
	log "github.com/luxfi/log"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
	"github.com/luxfi/amm/reclamm"
	"github.com/luxfi/amm/registry"
	"github.com/luxfi/amm/store"
	"github.com/luxfi/amm/vault"
)

func main() {
	_ = godotenv.Load()

	snapshotPath := flag.String("snapshot", os.Getenv("AMMQUOTE_SNAPSHOT"), "pool snapshot JSON file")
	tokenIn := flag.String("in", "", "token in")
	tokenOut := flag.String("out", "", "token out")
	amount := flag.String("amount", "", "amount given, raw token units")
	exactOut := flag.Bool("exact-out", false, "treat -amount as the exact amount out")
	writePath := flag.String("write", os.Getenv("AMMQUOTE_WRITE"), "write the post-swap snapshot to this file")
	flag.Parse()

	if *snapshotPath == "" || *tokenIn == "" || *tokenOut == "" || *amount == "" {
		flag.Usage()
		os.Exit(2)
	}
	amountRaw, ok := new(big.Int).SetString(*amount, 10)
	if !ok {
		fmt.Printf("invalid -amount %q\n", *amount)
		os.Exit(2)
	}

	logger := log.New("cmd", "ammquote")
	if err := run(logger, *snapshotPath, *writePath, &vault.SwapInput{
		Kind:      kindOf(*exactOut),
		TokenIn:   *tokenIn,
		TokenOut:  *tokenOut,
		AmountRaw: amountRaw,
	}); err != nil {
		fmt.Println("quote failed:", err)
		os.Exit(1)
	}
}

func kindOf(exactOut bool) pool.SwapKind {
	if exactOut {
		return pool.GivenOut
	}
	return pool.GivenIn
}

func run(logger log.Logger, snapshotPath, writePath string, in *vault.SwapInput) error {
	snap, err := readSnapshot(snapshotPath)
	if err != nil {
		return err
	}
	r := registry.Default()
	s, err := snap.State(r)
	if err != nil {
		return err
	}
	base := s.PoolBase()
	logger.Info("loaded pool",
		"pool", base.PoolAddress,
		"poolType", base.PoolType,
		"tokens", len(base.Tokens),
	)

	res, err := vault.New(r, logger).Swap(in, s, snap.Hook())
	if err != nil {
		return err
	}

	calculated := pool.IndexOf(base.Tokens, in.TokenOut)
	if in.Kind == pool.GivenOut {
		calculated = pool.IndexOf(base.Tokens, in.TokenIn)
	}
	fmt.Printf("kind=%s amount_calculated_raw=%s amount_calculated=%s swap_fee=%s aggregate_fee=%s\n",
		in.Kind,
		res.AmountCalculatedRaw,
		fixedpoint.Format(res.AmountCalculatedRaw, tokenDecimals(base, calculated)),
		fixedpoint.FormatWAD(res.SwapFeeAmountScaled18),
		fixedpoint.FormatWAD(res.AggregateFeeScaled18),
	)
	for i, b := range res.BalancesScaled18 {
		fmt.Printf("balance[%d] token=%s scaled18=%s\n", i, base.Tokens[i], fixedpoint.FormatWAD(b))
	}

	if writePath == "" || res.BalancesScaled18 == nil {
		return nil
	}
	if err := advanceVirtualBalances(s); err != nil {
		return err
	}
	base.BalancesLiveScaled18 = res.BalancesScaled18
	next, err := store.NewSnapshot(s, nil)
	if err != nil {
		return err
	}
	next.HookState = snap.HookState
	fp, err := writeSnapshot(writePath, next)
	if err != nil {
		return err
	}
	logger.Info("wrote snapshot",
		"path", writePath,
		"fingerprint", fp.String(),
	)
	return nil
}

// advanceVirtualBalances stores the virtual balances a ReClamm swap was
// priced at, as of the snapshot time. It must run before the post-swap
// balances replace the live ones.
func advanceVirtualBalances(s pool.State) error {
	st, ok := s.(*reclamm.State)
	if !ok {
		return nil
	}
	p, err := reclamm.NewPool(st)
	if err != nil {
		return err
	}
	vb, err := p.CurrentVirtualBalances(st.BalancesLiveScaled18)
	if err != nil {
		return err
	}
	st.LastVirtualBalances = []*big.Int{vb.A, vb.B}
	st.LastTimestamp = st.CurrentTimestamp
	return nil
}
