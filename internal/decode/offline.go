package decode

import (
	"context"
	"fmt"
	"strings"
)

// OfflineDecoder performs a deterministic structural decode of the VIN:
// manufacturer from the WMI (positions 1-3), model year from position 10,
// check-digit validation for North American VINs. No network, no secrets.
type OfflineDecoder struct{}

func NewOfflineDecoder() *OfflineDecoder { return &OfflineDecoder{} }

// wmiMakes maps World Manufacturer Identifier prefixes to manufacturers.
// Three-character entries win over two-character ones.
var wmiMakes = map[string]string{
	"WBA": "BMW", "WBS": "BMW", "WBX": "BMW", "WBY": "BMW",
	"WDB": "Mercedes-Benz", "WDC": "Mercedes-Benz", "WDD": "Mercedes-Benz",
	"WVW": "Volkswagen", "WV1": "Volkswagen", "WV2": "Volkswagen",
	"WAU": "Audi", "WA1": "Audi",
	"WP0": "Porsche", "WP1": "Porsche",
	"W0L": "Opel",
	"VF1": "Renault", "VF3": "Peugeot", "VF7": "Citroen",
	"YV1": "Volvo", "YV4": "Volvo",
	"TMB": "Skoda", "VSS": "SEAT",
	"ZFA": "Fiat", "ZAR": "Alfa Romeo", "ZFF": "Ferrari",
	"SAL": "Land Rover", "SAJ": "Jaguar", "SB1": "Toyota",
	"XTA": "Lada", "X4X": "BMW", "Z8T": "Toyota",
	"JHM": "Honda", "JF1": "Subaru", "JS1": "Suzuki",
	"KMH": "Hyundai", "KNA": "Kia", "KNB": "Kia", "U5Y": "Kia",
	"1FA": "Ford", "1FT": "Ford", "1G1": "Chevrolet", "1GC": "Chevrolet",
	"1HG": "Honda", "2HG": "Honda", "2T1": "Toyota", "3VW": "Volkswagen",
	"4T1": "Toyota", "5YJ": "Tesla",
	// Two-character Japanese prefixes.
	"JT": "Toyota", "JN": "Nissan", "JM": "Mazda", "JA": "Isuzu",
}

// yearCodes covers the 2001-2030 window of the 30-year cycle: digits for
// 2001-2009, letters for 2010 onward (I, O, Q, U, Z and 0 are never used).
var yearCodes = map[byte]int{
	'1': 2001, '2': 2002, '3': 2003, '4': 2004, '5': 2005,
	'6': 2006, '7': 2007, '8': 2008, '9': 2009,
	'A': 2010, 'B': 2011, 'C': 2012, 'D': 2013, 'E': 2014,
	'F': 2015, 'G': 2016, 'H': 2017, 'J': 2018, 'K': 2019,
	'L': 2020, 'M': 2021, 'N': 2022, 'P': 2023, 'R': 2024,
	'S': 2025, 'T': 2026, 'V': 2027, 'W': 2028, 'X': 2029,
	'Y': 2030,
}

// translit maps VIN characters to their check-digit values per ISO 3779.
var translit = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4,
	'5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
}

var checkWeights = [17]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

func (d *OfflineDecoder) Decode(_ context.Context, vin string) (Vehicle, error) {
	if len(vin) != 17 {
		return Vehicle{}, fmt.Errorf("%w: length %d", ErrMalformedVIN, len(vin))
	}
	if i := strings.IndexAny(vin, "IOQ"); i >= 0 {
		return Vehicle{}, fmt.Errorf("%w: forbidden character %q at position %d", ErrMalformedVIN, vin[i], i+1)
	}

	// Check digit is only mandated for North American VINs (region 1-5).
	if vin[0] >= '1' && vin[0] <= '5' {
		if err := verifyCheckDigit(vin); err != nil {
			return Vehicle{}, err
		}
	}

	maker, ok := wmiMakes[vin[:3]]
	if !ok {
		maker, ok = wmiMakes[vin[:2]]
	}
	if !ok {
		return Vehicle{}, fmt.Errorf("%w: unknown manufacturer code %q", ErrMalformedVIN, vin[:3])
	}

	year, ok := yearCodes[vin[9]]
	if !ok {
		return Vehicle{}, fmt.Errorf("%w: invalid year code %q", ErrMalformedVIN, vin[9])
	}

	return Vehicle{Make: maker, Year: year, Provenance: "offline"}, nil
}

func verifyCheckDigit(vin string) error {
	sum := 0
	for i := 0; i < 17; i++ {
		v, ok := translit[vin[i]]
		if !ok {
			return fmt.Errorf("%w: character %q not transliterable", ErrMalformedVIN, vin[i])
		}
		sum += v * checkWeights[i]
	}
	want := byte('0' + sum%11)
	if sum%11 == 10 {
		want = 'X'
	}
	if vin[8] != want {
		return fmt.Errorf("%w: check digit %q, expected %q", ErrMalformedVIN, vin[8], want)
	}
	return nil
}
