package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ATMStrike rounds an index price to the nearest strike on a strikeDist
// grid. Ties at exactly half the distance round down.
func ATMStrike(indexPrice, strikeDist float64) float64 {
	rem := mod(indexPrice, strikeDist)
	if rem <= strikeDist/2 {
		return indexPrice - rem
	}
	return indexPrice - rem + strikeDist
}

func mod(a, b float64) float64 {
	n := float64(int64(a / b))
	return a - n*b
}

// CallSymbol builds an option call symbol: base + expiry code + strike +
// "CE". otmFactor shifts the strike away from the money in strikeDist
// steps (0 = at the money).
func CallSymbol(baseSymbol, expiry string, indexPrice, strikeDist float64, otmFactor int) string {
	strike := int(ATMStrike(indexPrice, strikeDist)) + otmFactor*int(strikeDist)
	return fmt.Sprintf("%s%s%d%s", baseSymbol, expiry, strike, "CE")
}

// PutSymbol builds an option put symbol: base + expiry code + strike +
// "PE". otmFactor shifts the strike below the money.
func PutSymbol(baseSymbol, expiry string, indexPrice, strikeDist float64, otmFactor int) string {
	strike := int(ATMStrike(indexPrice, strikeDist)) - otmFactor*int(strikeDist)
	return fmt.Sprintf("%s%s%d%s", baseSymbol, expiry, strike, "PE")
}

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// SymbolExpiry extracts the contract expiry instant from an option symbol
// carrying an embedded DDMMMYY code (e.g. NIFTY25JAN2421500CE), resolved
// to that day's market close. Symbols without an expiry code fail.
func SymbolExpiry(symbol string) (time.Time, error) {
	i := strings.IndexFunc(symbol, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 || i+7 > len(symbol) {
		return time.Time{}, fmt.Errorf("symbol %q: no embedded expiry code", symbol)
	}
	code := symbol[i : i+7]

	day, err := strconv.Atoi(code[:2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("symbol %q: bad expiry day %q", symbol, code[:2])
	}
	mon, ok := months[strings.ToUpper(code[2:5])]
	if !ok {
		return time.Time{}, fmt.Errorf("symbol %q: bad expiry month %q", symbol, code[2:5])
	}
	yy, err := strconv.Atoi(code[5:7])
	if err != nil {
		return time.Time{}, fmt.Errorf("symbol %q: bad expiry year %q", symbol, code[5:7])
	}

	d := time.Date(2000+yy, mon, day, 0, 0, 0, 0, Exchange)
	return MarketClose(d), nil
}
