package gateway

import "fmt"

// Currencies whose minor unit is the unit itself; amounts in these are
// never multiplied by 100.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

func IsZeroDecimal(currency string) bool {
	_, ok := zeroDecimalCurrencies[currency]
	return ok
}

// MinorUnits converts a decimal amount to the currency's minor-unit
// convention.
func MinorUnits(amount float64, currency string) int64 {
	if IsZeroDecimal(currency) {
		return int64(amount + 0.5)
	}
	return int64(amount*100 + 0.5)
}

// DecimalValue renders minor units as the decimal string providers like
// PayPal expect ("9900" USD -> "99.00", "30" JPY -> "30").
func DecimalValue(amountMinor int64, currency string) string {
	if IsZeroDecimal(currency) {
		return fmt.Sprintf("%d", amountMinor)
	}
	return fmt.Sprintf("%d.%02d", amountMinor/100, amountMinor%100)
}
