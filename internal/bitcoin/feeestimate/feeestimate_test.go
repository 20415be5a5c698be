package feeestimate

import "testing"

func TestEstimateSizeFormula(t *testing.T) {
	cases := []struct {
		nIn, nOut uint64
		want      uint64
	}{
		{1, 2, 4 + 1 + 147 + 1 + 68 + 4},
		{0, 0, 4 + 1 + 1 + 4},
		{300, 1, 4 + 3 + 300*147 + 1 + 34 + 4}, // nIn requires a 3-byte VarInt
	}
	for _, c := range cases {
		if got := EstimateSize(c.nIn, c.nOut); got != c.want {
			t.Errorf("EstimateSize(%d, %d) = %d, want %d", c.nIn, c.nOut, got, c.want)
		}
	}
}

func TestEstimateSizeMonotonic(t *testing.T) {
	base := EstimateSize(1, 1)
	if EstimateSize(2, 1) <= base {
		t.Error("EstimateSize should grow with nIn")
	}
	if EstimateSize(1, 2) <= base {
		t.Error("EstimateSize should grow with nOut")
	}
}

func TestEstimateFeeIsSizeTimesRate(t *testing.T) {
	size := EstimateSize(3, 2)
	if got, want := EstimateFee(3, 2, 5), size*5; got != want {
		t.Errorf("EstimateFee(3, 2, 5) = %d, want %d", got, want)
	}
}
