package decode

import "context"

// StubDecoder returns a fixed vehicle for every VIN. Demo wiring only:
// the Provenance tag lets tests and operators catch it standing in for a
// real provider.
type StubDecoder struct{}

func NewStubDecoder() *StubDecoder { return &StubDecoder{} }

func (d *StubDecoder) Decode(_ context.Context, _ string) (Vehicle, error) {
	return Vehicle{
		Make:       "BMW",
		Model:      "320i",
		Year:       2013,
		Provenance: "stub",
	}, nil
}
