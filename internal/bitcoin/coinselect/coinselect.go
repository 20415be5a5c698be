// Package coinselect implements the Largest-First and Random-Improve
// (CIP-2, adapted) coin selection algorithms.
package coinselect

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sort"

	"github.com/jasony/bitcoinwallet/internal/bitcoin/feeestimate"
)

// MaxInputs is the hard ceiling on the number of inputs a selection may
// use before it is rejected as unwieldy to sign and broadcast.
const MaxInputs = 2048

var (
	ErrBalanceInsufficient   = errors.New("coinselect: available balance cannot cover target plus fee")
	ErrMaxInputCountExceeded = errors.New("coinselect: selection would exceed the maximum input count")
)

// UTXO is the minimal shape coin selection needs: a stable identity and a
// value.
type UTXO struct {
	ID    string
	Value uint64
}

// Result is a successful coin-selection outcome.
type Result struct {
	Selected  []UTXO
	Change    uint64
	HasChange bool
}

func sum(utxos []UTXO) uint64 {
	var s uint64
	for _, u := range utxos {
		s += u.Value
	}
	return s
}

func targetPlusFee(target uint64, nIn, numOutputs uint64, feePerByte uint64) uint64 {
	return target + feeestimate.EstimateFee(nIn, numOutputs+1, feePerByte)
}

// improveStep decides whether adding a candidate UTXO of the given value
// moves the running total closer to the 2x(target+fee) ideal without
// breaching the 3x(target+fee) ceiling or the input-count limit. The
// fee estimate backing ideal/maximum is computed against nIn+1, the
// input count the selection would have *after* adding the candidate,
// since that is the count whose fee this step is actually deciding on.
func improveStep(total, candidateValue, nIn, target, numOutputs, feePerByte uint64) (newTotal uint64, include bool) {
	need := targetPlusFee(target, nIn+1, numOutputs, feePerByte)
	ideal := 2 * need
	maximum := 3 * need
	distBefore := absDiff(ideal, total)
	distAfter := absDiff(ideal, total+candidateValue)
	if distAfter < distBefore && total+candidateValue <= maximum && nIn+1 <= MaxInputs {
		return total + candidateValue, true
	}
	return total, false
}

// LargestFirst sorts utxos by value descending and greedily selects until
// the running sum covers target plus the estimated fee for the
// in-progress selection (the fee estimate is recomputed after each
// append, since it grows with input count).
func LargestFirst(utxos []UTXO, numOutputs uint64, target uint64, feePerByte uint64) (Result, error) {
	sorted := append([]UTXO{}, utxos...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	var selected []UTXO
	var total uint64
	for _, u := range sorted {
		selected = append(selected, u)
		total += u.Value
		if uint64(len(selected)) > MaxInputs {
			return Result{}, ErrMaxInputCountExceeded
		}
		need := targetPlusFee(target, uint64(len(selected)), numOutputs, feePerByte)
		if total > need {
			return Result{Selected: selected, Change: total - need, HasChange: true}, nil
		}
		if total == need {
			return Result{Selected: selected}, nil
		}
	}
	return Result{}, ErrBalanceInsufficient
}

// RandomImprove runs CIP-2's two-phase random selection: phase 1 randomly
// accumulates UTXOs until the target is covered (falling back to
// Largest-First over the *remaining* pool — discarding phase 1's partial
// selection — if more than MaxInputs are needed; this discard-on-fallback
// behavior is carried over unchanged from the system this algorithm was
// modeled on, not fixed here); phase 2 walks a random permutation of
// what's left, greedily pulling in UTXOs that move the sum closer to
// 2x(target+fee) without exceeding 3x(target+fee).
func RandomImprove(utxos []UTXO, numOutputs uint64, target uint64, feePerByte uint64) (Result, error) {
	pool := append([]UTXO{}, utxos...)

	var selected []UTXO
	var total uint64
	for {
		need := targetPlusFee(target, uint64(len(selected)), numOutputs, feePerByte)
		if total >= need && len(selected) > 0 {
			break
		}
		if len(pool) == 0 {
			return Result{}, ErrBalanceInsufficient
		}
		idx, err := randomIndex(len(pool))
		if err != nil {
			return Result{}, err
		}
		selected = append(selected, pool[idx])
		total += pool[idx].Value
		pool = append(pool[:idx], pool[idx+1:]...)
		if uint64(len(selected)) > MaxInputs {
			return LargestFirst(pool, numOutputs, target, feePerByte)
		}
	}

	perm, err := randomPermutation(len(pool))
	if err != nil {
		return Result{}, err
	}
	for _, idx := range perm {
		u := pool[idx]
		newTotal, include := improveStep(total, u.Value, uint64(len(selected)), target, numOutputs, feePerByte)
		if include {
			selected = append(selected, u)
			total = newTotal
		}
	}

	finalNeed := targetPlusFee(target, uint64(len(selected)), numOutputs, feePerByte)
	if total == finalNeed {
		return Result{Selected: selected}, nil
	}
	return Result{Selected: selected, Change: total - finalNeed, HasChange: true}, nil
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// randomIndex returns a cryptographically random index in [0, n).
func randomIndex(n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("coinselect: cannot pick an index from an empty pool")
	}
	max := big.NewInt(int64(n))
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// randomPermutation returns a Fisher-Yates shuffle of [0, n) drawn from a
// cryptographically strong RNG.
func randomPermutation(n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return nil, err
		}
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm, nil
}
