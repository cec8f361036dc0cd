package fingerprint

// Config is the fixed configuration of a Hasher. It is read-only once the
// Hasher is built and may be shared across goroutines.
type Config struct {
	MineralClass string
	Rounding     RoundingRule
	Algorithm    HashAlgorithm
	Prefix       string
}

type Option func(*Config)

func WithMineralClass(class string) Option {
	return func(c *Config) {
		c.MineralClass = class
	}
}

func WithRounding(rule RoundingRule) Option {
	return func(c *Config) {
		c.Rounding = rule
	}
}

func WithAlgorithm(alg HashAlgorithm) Option {
	return func(c *Config) {
		c.Algorithm = alg
	}
}

func WithPrefix(prefix string) Option {
	return func(c *Config) {
		c.Prefix = prefix
	}
}

func DefaultConfig() Config {
	return Config{
		MineralClass: DefaultMineralClass,
		Rounding:     DefaultRounding,
		Algorithm:    DefaultAlgorithm,
		Prefix:       DefaultPrefix,
	}
}

// Result is everything the pipeline derives from one measurement.
type Result struct {
	Record      CanonicalRecord
	Payload     []byte // canonical serialization of Record
	Fingerprint Fingerprint
	CID         string
}

// Hasher runs the full pipeline: canonicalize, serialize, hash.
type Hasher struct {
	cfg           Config
	canonicalizer *Canonicalizer
	generator     *Generator
}

// New builds a Hasher from DefaultConfig plus opts. Configuration errors are
// reported as InvalidInput.
func New(opts ...Option) (*Hasher, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	canon, err := NewCanonicalizer(cfg.MineralClass, cfg.Rounding)
	if err != nil {
		return nil, err
	}
	gen, err := NewGenerator(cfg.Algorithm, cfg.Prefix)
	if err != nil {
		return nil, err
	}
	cfg.Rounding = canon.Rounding()
	cfg.Algorithm = gen.Algorithm()

	return &Hasher{cfg: cfg, canonicalizer: canon, generator: gen}, nil
}

// Config returns a copy of the hasher configuration.
func (h *Hasher) Config() Config { return h.cfg }

func (h *Hasher) Canonicalize(raw RawMeasurement) (CanonicalRecord, error) {
	return h.canonicalizer.Canonicalize(raw)
}

func (h *Hasher) Generate(r CanonicalRecord) (Fingerprint, error) {
	return h.generator.Generate(r)
}

// Fingerprint runs the whole pipeline on raw.
func (h *Hasher) Fingerprint(raw RawMeasurement) (Result, error) {
	record, err := h.canonicalizer.Canonicalize(raw)
	if err != nil {
		return Result{}, err
	}
	payload, err := Serialize(record)
	if err != nil {
		return Result{}, err
	}
	digest, err := h.cfg.Algorithm.Sum(payload)
	if err != nil {
		return Result{}, err
	}
	id, err := h.generator.CID(digest)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Record:      record,
		Payload:     payload,
		Fingerprint: h.generator.render(digest),
		CID:         id,
	}, nil
}

// ParseFingerprint validates s against the hasher's prefix.
func (h *Hasher) ParseFingerprint(s string) (Fingerprint, error) {
	return ParseFingerprint(s, h.cfg.Prefix)
}
