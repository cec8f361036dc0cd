package spectraldna

import (
	"github.com/gemlab/spectraldna/pkg/models"
	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// Registration is the outcome of registering a reading.
type Registration struct {
	Sample      models.Sample       // Stored sample (new or pre-existing)
	Existing    bool                // True when the fingerprint was already registered
	Result      *fingerprint.Result // Pipeline output for this reading
	Attestation *models.Attestation // Issued attestation, nil without a signer or when Existing
}

// Verification is the outcome of checking a reading against the registry.
type Verification struct {
	Result   *fingerprint.Result // Pipeline output for this reading
	Matched  bool                // A registered sample has the same fingerprint
	Sample   *models.Sample      // The matching sample, if any
	Attested bool                // At least one stored attestation verifies
}

// Stats summarizes the registry.
type Stats struct {
	Samples      int64
	MineralClass string
	Algorithm    string
	Rounding     string
}
