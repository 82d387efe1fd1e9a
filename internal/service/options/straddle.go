package options

import (
	"fmt"
	"math"
	"sort"
)

// Contract is one option from a provider chain, already mapped into a
// provider-neutral shape.
type Contract struct {
	Strike     float64
	Bid        float64
	Ask        float64
	ImpliedVol float64
}

// Straddle is the ATM call/put pair used for the expected-move estimate.
type Straddle struct {
	CallStrike     float64
	PutStrike      float64
	ImpliedMovePct float64
	ImpliedVol     float64
}

// ATMStraddle finds the call whose strike is closest to spot and the put at
// the same strike (or, failing an exact match, the closest put
// independently), then computes the standard straddle expected-move
// approximation:
//
//	impliedMove = (mid(call) + mid(put)) / spot * 100
//
// Tie-break rule: strike distance ties favor the lower strike, whichever is
// encountered first in a stable ascending scan.
func ATMStraddle(spot float64, calls, puts []Contract) (*Straddle, error) {
	if spot <= 0 {
		return nil, fmt.Errorf("straddle: invalid spot %.2f", spot)
	}
	if len(calls) == 0 || len(puts) == 0 {
		return nil, fmt.Errorf("straddle: empty chain side")
	}

	call := closestToSpot(spot, calls)

	var put *Contract
	for i := range puts {
		if puts[i].Strike == call.Strike {
			put = &puts[i]
			break
		}
	}
	if put == nil {
		put = closestToSpot(spot, puts)
	}

	callMid := midpoint(call.Bid, call.Ask)
	putMid := midpoint(put.Bid, put.Ask)
	if callMid <= 0 && putMid <= 0 {
		return nil, fmt.Errorf("straddle: no usable quotes at strike %.2f", call.Strike)
	}

	return &Straddle{
		CallStrike:     call.Strike,
		PutStrike:      put.Strike,
		ImpliedMovePct: (callMid + putMid) / spot * 100,
		ImpliedVol:     (call.ImpliedVol + put.ImpliedVol) / 2,
	}, nil
}

func closestToSpot(spot float64, contracts []Contract) *Contract {
	sorted := make([]Contract, len(contracts))
	copy(sorted, contracts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Strike < sorted[j].Strike })

	best := &sorted[0]
	bestDist := math.Abs(sorted[0].Strike - spot)
	for i := 1; i < len(sorted); i++ {
		if d := math.Abs(sorted[i].Strike - spot); d < bestDist {
			best = &sorted[i]
			bestDist = d
		}
	}
	return best
}

func midpoint(bid, ask float64) float64 {
	if bid <= 0 && ask <= 0 {
		return 0
	}
	return (bid + ask) / 2
}
