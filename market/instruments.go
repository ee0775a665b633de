// market/instruments.go
package market

import "sort"

type InstrumentMeta struct {
	Name      string
	Class     string
	SeedPrice float64
}

// Instruments is the built-in instrument table. The synthetic feed starts
// every random walk from SeedPrice.
var Instruments = map[string]InstrumentMeta{
	"AAPL":   {Name: "AAPL", Class: "equity", SeedPrice: 189.5},
	"MSFT":   {Name: "MSFT", Class: "equity", SeedPrice: 340.1},
	"TSLA":   {Name: "TSLA", Class: "equity", SeedPrice: 255.8},
	"GOOG":   {Name: "GOOG", Class: "equity", SeedPrice: 134.4},
	"AMZN":   {Name: "AMZN", Class: "equity", SeedPrice: 175.6},
	"GOLD":   {Name: "GOLD", Class: "commodity", SeedPrice: 190.2},
	"SILVER": {Name: "SILVER", Class: "commodity", SeedPrice: 24.3},
	"OIL":    {Name: "OIL", Class: "commodity", SeedPrice: 70.5},
	"BTC":    {Name: "BTC", Class: "crypto", SeedPrice: 111000.0},
	"ETH":    {Name: "ETH", Class: "crypto", SeedPrice: 2000.0},
}

// DefaultSymbols returns the instrument table's symbols in sorted order.
func DefaultSymbols() []string {
	out := make([]string, 0, len(Instruments))
	for s := range Instruments {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
