package decode

import (
	"context"
	"errors"
	"strconv"
)

// Vehicle holds whatever attributes a decoder managed to recover. Richness
// varies per provider: the offline parser fills make and year only, remote
// catalogs usually add model and engine.
type Vehicle struct {
	Make         string
	Model        string
	Year         int
	EngineLitres float64

	// Provenance names the provider that produced this record. The stub
	// decoder tags itself here so accidental demo wiring is detectable.
	Provenance string
}

// Decoder maps a normalized 17-character VIN to vehicle attributes.
type Decoder interface {
	Decode(ctx context.Context, vin string) (Vehicle, error)
}

var (
	// ErrMalformedVIN means the VIN passed length validation but violates
	// structural rules (forbidden characters, bad check digit, unknown
	// manufacturer code).
	ErrMalformedVIN = errors.New("malformed vin")

	// ErrProviderUnavailable covers transport failures and non-success
	// responses from remote decoders.
	ErrProviderUnavailable = errors.New("decode provider unavailable")

	// ErrProviderTimeout means the provider call exceeded its bounded wait.
	ErrProviderTimeout = errors.New("decode provider timeout")
)

// String renders the vehicle the way the bot presents it to the user.
func (v Vehicle) String() string {
	out := v.Make
	if v.Model != "" {
		out += " " + v.Model
	}
	if v.Year != 0 {
		out += " " + strconv.Itoa(v.Year)
	}
	return out
}
