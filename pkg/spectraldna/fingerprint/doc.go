// Package fingerprint derives a spectral hash from a Raman measurement.
//
// The pipeline is pure and deterministic:
//
//	RawMeasurement -> Canonicalize -> CanonicalRecord -> Serialize -> digest -> Fingerprint
//
// Peaks are quantized to integers (absorbing instrument noise below half a
// wavenumber) and sorted, the record is rendered as compact canonical JSON
// and hashed with a 256-bit digest. Nothing here reads the clock, random
// state or any I/O, and every exported value is safe for concurrent use once
// constructed.
package fingerprint
