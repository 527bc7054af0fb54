package fees

import (
	"math/big"

	"emberchain/native/numeric"
)

// The staked asset and the fee accounting unit deliberately carry different
// decimal scales: EMBER amounts are 8-decimal base units while entry fees are
// quoted in a 6-decimal accounting unit. Keeping both magnitudes on the
// calculator output leaves the unit conversion explicit at the call site.
const (
	AssetDecimals = 8
	QuoteDecimals = 6

	// EntryFeeBpsDenominator is the fixed denominator for bracket rates.
	EntryFeeBpsDenominator = 10_000
)

var (
	assetUnit       = big.NewInt(100_000_000)
	assetQuoteScale = big.NewInt(100) // 10^(AssetDecimals-QuoteDecimals)
	bpsDenominator  = big.NewInt(EntryFeeBpsDenominator)
)

// entryFeeBracket maps a whole-unit deposit ceiling to its fee rate. A zero
// ceiling marks the open-ended top bracket.
type entryFeeBracket struct {
	ceilWholeUnits uint64
	feeBps         uint32
}

// Larger deposits pay proportionally less on entry.
var entryFeeBrackets = []entryFeeBracket{
	{ceilWholeUnits: 1_000, feeBps: 200},
	{ceilWholeUnits: 10_000, feeBps: 100},
	{ceilWholeUnits: 100_000, feeBps: 50},
	{ceilWholeUnits: 500_000, feeBps: 25},
	{ceilWholeUnits: 0, feeBps: 10},
}

// EntryFeeQuote reports the bracket applied to a deposit and the resulting fee
// in both denominations.
type EntryFeeQuote struct {
	FeeBps     uint32
	WholeUnits *big.Int
	// FeeAsset is the raw fee in 8-decimal asset base units.
	FeeAsset *big.Int
	// FeeQuote is the fee converted into the 6-decimal accounting unit.
	FeeQuote *big.Int
}

// QuoteToAsset converts a 6-decimal quote amount into 8-decimal asset base
// units.
func QuoteToAsset(quote *big.Int) *big.Int {
	return numeric.SatMul(numeric.Clamp(quote), assetQuoteScale)
}

// AssetToQuote converts an 8-decimal asset amount into the 6-decimal quote
// unit, truncating.
func AssetToQuote(asset *big.Int) *big.Int {
	return numeric.Div(numeric.Clamp(asset), assetQuoteScale)
}

// EntryFee resolves the tiered entry fee for a deposit expressed in asset base
// units. Zero is a valid input and yields a zero fee at the lowest bracket's
// rate. All arithmetic saturates; extreme inputs clamp instead of wrapping.
func EntryFee(amount *big.Int) EntryFeeQuote {
	deposit := numeric.Clamp(amount)
	whole := new(big.Int).Quo(deposit, assetUnit)
	feeBps := entryFeeBrackets[len(entryFeeBrackets)-1].feeBps
	for _, bracket := range entryFeeBrackets {
		if bracket.ceilWholeUnits == 0 {
			feeBps = bracket.feeBps
			break
		}
		if whole.IsUint64() && whole.Uint64() <= bracket.ceilWholeUnits {
			feeBps = bracket.feeBps
			break
		}
	}
	feeAsset := numeric.SatMul(deposit, new(big.Int).SetUint64(uint64(feeBps)))
	feeAsset = numeric.Div(feeAsset, bpsDenominator)
	feeQuote := numeric.Div(feeAsset, assetQuoteScale)
	return EntryFeeQuote{
		FeeBps:     feeBps,
		WholeUnits: whole,
		FeeAsset:   feeAsset,
		FeeQuote:   feeQuote,
	}
}
