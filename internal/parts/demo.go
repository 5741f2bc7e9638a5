package parts

import (
	"context"
	"strings"
)

// DemoSearcher serves a small static catalog, cheapest first. Demo wiring
// for environments without catalog credentials.
type DemoSearcher struct{}

func NewDemoSearcher() *DemoSearcher { return &DemoSearcher{} }

var demoCatalog = map[string][]Candidate{
	"фильтр": {
		{Article: "W712/75", Name: "Фильтр масляный MANN", Price: "450 руб.", Availability: "12", Source: "demo"},
		{Article: "OC90", Name: "Фильтр масляный Knecht", Price: "520 руб.", Availability: "8", Source: "demo"},
		{Article: "F026407072", Name: "Фильтр масляный Bosch", Price: "610 руб.", Availability: "5", Source: "demo"},
		{Article: "OX387D", Name: "Фильтр масляный Mahle", Price: "680 руб.", Availability: "3", Source: "demo"},
		{Article: "HU816X", Name: "Фильтр масляный MANN HU", Price: "790 руб.", Availability: "6", Source: "demo"},
		{Article: "E61HD110", Name: "Фильтр масляный Hengst", Price: "850 руб.", Availability: "2", Source: "demo"},
	},
	"колодк": {
		{Article: "GDB1560", Name: "Колодки тормозные TRW", Price: "2100 руб.", Availability: "4", Source: "demo"},
		{Article: "P06036", Name: "Колодки тормозные Brembo", Price: "2650 руб.", Availability: "7", Source: "demo"},
	},
	"свеч": {
		{Article: "FR7NPP332", Name: "Свеча зажигания Bosch", Price: "380 руб.", Availability: "20", Source: "demo"},
	},
}

var demoAliases = map[string]string{
	"filter": "фильтр",
	"oil":    "фильтр",
	"масло":  "фильтр",
	"brake":  "колодк",
	"pad":    "колодк",
	"spark":  "свеч",
	"plug":   "свеч",
}

func (s *DemoSearcher) Search(_ context.Context, _ string, query string) ([]Candidate, error) {
	folded := Fold(query)

	for key, items := range demoCatalog {
		if strings.Contains(folded, key) {
			return items, nil
		}
	}
	for alias, key := range demoAliases {
		if strings.Contains(folded, alias) {
			return demoCatalog[key], nil
		}
	}
	return nil, nil
}
