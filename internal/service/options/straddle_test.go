package options

import (
	"math"
	"testing"
)

func contracts(strikes ...float64) []Contract {
	out := make([]Contract, len(strikes))
	for i, s := range strikes {
		out[i] = Contract{Strike: s, Bid: 1.0, Ask: 1.2, ImpliedVol: 0.5}
	}
	return out
}

func TestATMStraddleSelectsNearestStrike(t *testing.T) {
	calls := contracts(95, 100, 105)
	puts := contracts(95, 100, 105)

	st, err := ATMStraddle(101, calls, puts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CallStrike != 100 {
		t.Fatalf("expected call strike 100, got %.0f", st.CallStrike)
	}
	if st.PutStrike != 100 {
		t.Fatalf("expected matching put strike 100, got %.0f", st.PutStrike)
	}
}

func TestATMStraddleTieFavorsLowerStrike(t *testing.T) {
	// Spot exactly between 100 and 110: ascending scan keeps 100.
	calls := contracts(110, 100)
	puts := contracts(100, 110)

	st, err := ATMStraddle(105, calls, puts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CallStrike != 100 {
		t.Fatalf("tie must favor lower strike, got %.0f", st.CallStrike)
	}
}

func TestATMStraddleFallsBackToClosestPut(t *testing.T) {
	calls := contracts(100)
	puts := contracts(97.5, 102.5)

	st, err := ATMStraddle(100, calls, puts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.PutStrike != 97.5 {
		t.Fatalf("expected closest put 97.5, got %.1f", st.PutStrike)
	}
}

func TestATMStraddleImpliedMove(t *testing.T) {
	calls := []Contract{{Strike: 100, Bid: 2.0, Ask: 3.0, ImpliedVol: 0.6}}
	puts := []Contract{{Strike: 100, Bid: 1.0, Ask: 2.0, ImpliedVol: 0.4}}

	st, err := ATMStraddle(100, calls, puts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// mid(call)=2.5, mid(put)=1.5 -> 4/100*100 = 4%
	if math.Abs(st.ImpliedMovePct-4.0) > 1e-9 {
		t.Fatalf("expected implied move 4%%, got %.4f", st.ImpliedMovePct)
	}
	if math.Abs(st.ImpliedVol-0.5) > 1e-9 {
		t.Fatalf("expected averaged IV 0.5, got %.4f", st.ImpliedVol)
	}
}

func TestATMStraddleRejectsEmptyChain(t *testing.T) {
	if _, err := ATMStraddle(100, nil, contracts(100)); err == nil {
		t.Fatalf("expected error for empty calls")
	}
	if _, err := ATMStraddle(0, contracts(100), contracts(100)); err == nil {
		t.Fatalf("expected error for invalid spot")
	}
}
