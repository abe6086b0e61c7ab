package seeding

import (
	"fmt"
	"reflect"

	"github.com/adlytica/toolkit/internal/domain/scenario"
)

// VerifyResult reports the outcome of a hybrid verification
type VerifyResult struct {
	StructuralMatch bool   `json:"structural_match"`
	ChecksumMatch   bool   `json:"checksum_match"`
	WantChecksum    string `json:"want_checksum"`
	GotChecksum     string `json:"got_checksum"`
}

// Accepted requires BOTH checks to pass; a structural match with a checksum
// mismatch (or vice versa) is a hard verification failure
func (v VerifyResult) Accepted() bool {
	return v.StructuralMatch && v.ChecksumMatch
}

// Describe renders a human-readable verdict
func (v VerifyResult) Describe() string {
	if v.Accepted() {
		return fmt.Sprintf("verified: shape and checksum %s match golden fixture", v.GotChecksum)
	}
	if !v.StructuralMatch && !v.ChecksumMatch {
		return fmt.Sprintf("verification failed: shape differs and checksum mismatch (want %s, got %s)",
			v.WantChecksum, v.GotChecksum)
	}
	if !v.ChecksumMatch {
		return fmt.Sprintf("verification failed: shapes match but checksum mismatch (want %s, got %s)",
			v.WantChecksum, v.GotChecksum)
	}
	return "verification failed: checksums match but shapes differ"
}

// VerifyAgainstFixture compares a freshly generated shape with a golden
// fixture, checking structural equality and the checksum independently
func VerifyAgainstFixture(generated scenario.Shape, fixture *scenario.Fixture) (VerifyResult, error) {
	gotChecksum, err := Checksum(generated)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("checksum generated shape: %w", err)
	}

	generatedCanonical, err := CanonicalJSON(generated)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("canonicalize generated shape: %w", err)
	}
	fixtureCanonical, err := CanonicalJSON(fixture.Shape)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("canonicalize fixture shape: %w", err)
	}

	return VerifyResult{
		StructuralMatch: reflect.DeepEqual(generatedCanonical, fixtureCanonical),
		ChecksumMatch:   gotChecksum == fixture.Checksum,
		WantChecksum:    fixture.Checksum,
		GotChecksum:     gotChecksum,
	}, nil
}

// CaptureFixture builds a golden fixture from a generated shape
func CaptureFixture(shape scenario.Shape) (*scenario.Fixture, error) {
	checksum, err := Checksum(shape)
	if err != nil {
		return nil, err
	}
	return &scenario.Fixture{
		ScenarioID: shape.ScenarioID,
		Seed:       shape.Seed,
		Shape:      shape,
		Checksum:   checksum,
	}, nil
}
