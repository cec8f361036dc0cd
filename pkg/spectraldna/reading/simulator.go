package reading

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// DefaultNoise is the standard deviation (cm^-1) of the simulated
// calibration noise added to each reference peak.
const DefaultNoise = 0.5

type SimulatorConfig struct {
	DeviceID    string
	Peaks       []float64
	Intensities []float64
	Noise       float64
	Seed        *uint64
	Shuffle     bool
	Clock       func() time.Time
}

type SimulatorOption func(*SimulatorConfig)

func WithDeviceID(id string) SimulatorOption {
	return func(c *SimulatorConfig) {
		c.DeviceID = id
	}
}

// WithReference replaces the reference spectrum. Slices are copied.
func WithReference(peaks, intensities []float64) SimulatorOption {
	return func(c *SimulatorConfig) {
		c.Peaks = append([]float64(nil), peaks...)
		c.Intensities = append([]float64(nil), intensities...)
	}
}

func WithNoise(sigma float64) SimulatorOption {
	return func(c *SimulatorConfig) {
		c.Noise = sigma
	}
}

// WithSeed makes the noise, ordering and scan ids reproducible.
func WithSeed(seed uint64) SimulatorOption {
	return func(c *SimulatorConfig) {
		c.Seed = &seed
	}
}

// WithShuffle reports peaks in random order, each keeping its intensity.
func WithShuffle(shuffle bool) SimulatorOption {
	return func(c *SimulatorConfig) {
		c.Shuffle = shuffle
	}
}

func WithClock(clock func() time.Time) SimulatorOption {
	return func(c *SimulatorConfig) {
		c.Clock = clock
	}
}

// Simulator emulates a Raman spectrometer scanning an emerald: the reference
// peaks plus Gaussian noise.
type Simulator struct {
	cfg SimulatorConfig

	mu     sync.Mutex
	stream *rand.ChaCha8
	rng    *rand.Rand
}

func NewSimulator(opts ...SimulatorOption) (*Simulator, error) {
	cfg := SimulatorConfig{
		DeviceID:    DefaultDeviceID,
		Peaks:       append([]float64(nil), ReferencePeaks...),
		Intensities: append([]float64(nil), ReferenceIntensities...),
		Noise:       DefaultNoise,
		Clock:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(cfg.Peaks) != len(cfg.Intensities) {
		return nil, fmt.Errorf("reference has %d peaks but %d intensities", len(cfg.Peaks), len(cfg.Intensities))
	}
	if cfg.Noise < 0 {
		return nil, fmt.Errorf("noise must be non-negative, got %v", cfg.Noise)
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("clock must not be nil")
	}

	var seed [32]byte
	if cfg.Seed != nil {
		binary.LittleEndian.PutUint64(seed[:8], *cfg.Seed)
	} else if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("failed to seed simulator: %w", err)
	}
	stream := rand.NewChaCha8(seed)

	return &Simulator{
		cfg:    cfg,
		stream: stream,
		rng:    rand.New(stream),
	}, nil
}

// Read produces one simulated scan.
func (s *Simulator) Read(ctx context.Context) (fingerprint.RawMeasurement, error) {
	if err := ctx.Err(); err != nil {
		return fingerprint.RawMeasurement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.cfg.Peaks)
	peaks := make([]float64, n)
	intensities := make([]float64, n)
	for i := range s.cfg.Peaks {
		peaks[i] = s.cfg.Peaks[i] + s.rng.NormFloat64()*s.cfg.Noise
		intensities[i] = s.cfg.Intensities[i]
	}
	if s.cfg.Shuffle {
		s.rng.Shuffle(n, func(i, j int) {
			peaks[i], peaks[j] = peaks[j], peaks[i]
			intensities[i], intensities[j] = intensities[j], intensities[i]
		})
	}

	id, err := uuid.NewRandomFromReader(s.stream)
	if err != nil {
		return fingerprint.RawMeasurement{}, fmt.Errorf("failed to generate scan id: %w", err)
	}

	return fingerprint.RawMeasurement{
		Peaks:       peaks,
		Intensities: intensities,
		Timestamp:   s.cfg.Clock(),
		ScanID:      scanID(id),
		DeviceID:    s.cfg.DeviceID,
	}, nil
}

// scan ids are the first 8 hex characters of a random UUID
func scanID(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
