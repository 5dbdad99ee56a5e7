package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SatsPerBitcoin is the number of satoshis in one whole bitcoin.
const SatsPerBitcoin = 100_000_000

// FiatToSats converts a fiat amount to satoshis at the given rate (fiat
// per whole bitcoin), flooring the result. The conversion is one
// directional and not required to round-trip.
func FiatToSats(fiatAmount string, rate float64) (int64, error) {
	fiat, err := strconv.ParseFloat(fiatAmount, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fiat amount %q: %v", fiatAmount, err)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("invalid exchange rate %v", rate)
	}
	return int64(math.Floor(fiat / rate * SatsPerBitcoin)), nil
}

// SatsToFiat converts satoshis to a fiat amount string with standard
// 2-decimal rounding.
func SatsToFiat(sats int64, rate float64) string {
	fiat := float64(sats) / SatsPerBitcoin * rate
	return strconv.FormatFloat(math.Round(fiat*100)/100, 'f', 2, 64)
}

// FormatAmount inserts thousands separators into an integer or decimal
// amount string for display.
func FormatAmount(amount string) string {
	if amount == "" {
		return "0"
	}

	whole, frac, hasFrac := strings.Cut(amount, ".")

	var sb strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}
	if hasFrac {
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	return sb.String()
}
