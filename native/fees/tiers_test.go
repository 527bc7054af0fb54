package fees

import (
	"math/big"
	"testing"

	"emberchain/native/numeric"
)

func assetAmount(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), assetUnit)
}

func TestEntryFeeBrackets(t *testing.T) {
	cases := []struct {
		wholeUnits int64
		wantBps    uint32
	}{
		{0, 200},
		{1, 200},
		{1_000, 200},
		{1_001, 100},
		{10_000, 100},
		{10_001, 50},
		{100_000, 50},
		{100_001, 25},
		{500_000, 25},
		{500_001, 10},
		{10_000_000, 10},
	}
	for _, tc := range cases {
		quote := EntryFee(assetAmount(tc.wholeUnits))
		if quote.FeeBps != tc.wantBps {
			t.Fatalf("%d whole units: expected %d bps, got %d", tc.wholeUnits, tc.wantBps, quote.FeeBps)
		}
	}
}

func TestEntryFeeBpsNonIncreasing(t *testing.T) {
	previous := uint32(0)
	for i, whole := range []int64{500, 5_000, 50_000, 250_000, 750_000} {
		quote := EntryFee(assetAmount(whole))
		if i > 0 && quote.FeeBps > previous {
			t.Fatalf("fee bps increased across brackets: %d -> %d", previous, quote.FeeBps)
		}
		previous = quote.FeeBps
	}
}

func TestEntryFeeValues(t *testing.T) {
	// 1,000 whole units at 200 bps: 2% of 1000e8 = 20e8 asset units, which is
	// 20e6 in the 6-decimal quote unit.
	quote := EntryFee(assetAmount(1_000))
	if quote.FeeAsset.Cmp(big.NewInt(2_000_000_000)) != 0 {
		t.Fatalf("unexpected asset fee: %s", quote.FeeAsset)
	}
	if quote.FeeQuote.Cmp(big.NewInt(20_000_000)) != 0 {
		t.Fatalf("unexpected quote fee: %s", quote.FeeQuote)
	}
	if quote.WholeUnits.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("unexpected whole units: %s", quote.WholeUnits)
	}
}

func TestEntryFeeZeroAmount(t *testing.T) {
	quote := EntryFee(big.NewInt(0))
	if quote.FeeBps != 200 {
		t.Fatalf("zero amount should use the lowest bracket rate, got %d", quote.FeeBps)
	}
	if quote.FeeAsset.Sign() != 0 || quote.FeeQuote.Sign() != 0 {
		t.Fatalf("zero amount must yield zero fee")
	}
	if quote := EntryFee(nil); quote.FeeAsset.Sign() != 0 {
		t.Fatalf("nil amount must yield zero fee")
	}
}

func TestEntryFeeSaturatesAtDomainMax(t *testing.T) {
	quote := EntryFee(numeric.MaxAmount)
	if quote.FeeBps != 10 {
		t.Fatalf("extreme amount should land in the top bracket, got %d bps", quote.FeeBps)
	}
	if quote.FeeAsset.Cmp(numeric.MaxAmount) > 0 {
		t.Fatalf("asset fee escaped the amount domain: %s", quote.FeeAsset)
	}
}

func TestQuoteAssetConversion(t *testing.T) {
	asset := QuoteToAsset(big.NewInt(5_000_000))
	if asset.Cmp(big.NewInt(500_000_000)) != 0 {
		t.Fatalf("unexpected quote->asset conversion: %s", asset)
	}
	quote := AssetToQuote(asset)
	if quote.Cmp(big.NewInt(5_000_000)) != 0 {
		t.Fatalf("unexpected asset->quote conversion: %s", quote)
	}
}
