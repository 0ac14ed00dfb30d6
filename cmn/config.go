package cmn

// Protocol selects the coherence protocol a Config's caches run. Anything
// other than "MESI" or "Dragon" on the CLI defaults to MESI (spec §6.1);
// that defaulting happens in cmd/cachesim, not here — by the time a Config
// reaches Validate, Protocol is already one of these two values.
type Protocol string

const (
	MESI   Protocol = "MESI"
	Dragon Protocol = "Dragon"
)

const (
	// MaxCores is the hard cap on cores the CLI will discover traces for
	// (spec §6.1).
	MaxCores = 4
	// WordSize is WORD_SIZE from the cycle-cost model (spec §6.3), in bytes.
	WordSize = 4
)

// Cycle-cost constants, spec §6.3.
const (
	CacheHit = 1
	MemFetch = 100
	MemFlush = 100
	SendWord = 2
)

// Config is the frozen, validated set of parameters a simulation run is
// built from: cache geometry, protocol, and the prefix of the per-core
// trace files. It is constructed once by the CLI and handed down read-only
// to every component, the way the teacher project threads a single
// validated config object through its subsystems.
type Config struct {
	Protocol      Protocol
	TracePrefix   string
	CacheSize     int // bytes
	Associativity int
	BlockSize     int // bytes
	AddressBits   int // defaults to 32 if zero; see NewConfig
}

// NewConfig fills in defaults and returns a Config. It does not validate —
// call Validate separately so CLI argument parsing and validation failures
// can be reported with distinct messages.
func NewConfig(protocol Protocol, tracePrefix string, cacheSize, associativity, blockSize int) *Config {
	return &Config{
		Protocol:      protocol,
		TracePrefix:   tracePrefix,
		CacheSize:     cacheSize,
		Associativity: associativity,
		BlockSize:     blockSize,
		AddressBits:   32,
	}
}

// NumSets returns cache_size / (block_size * associativity).
func (c *Config) NumSets() int {
	return c.CacheSize / (c.BlockSize * c.Associativity)
}

// OffsetBits, IndexBits, TagBits implement the address decomposition of
// spec §3: offset_bits = log2(block_size), index_bits = log2(num_sets),
// tag_bits = W - offset_bits - index_bits.
func (c *Config) OffsetBits() int { return Log2(c.BlockSize) }
func (c *Config) IndexBits() int  { return Log2(c.NumSets()) }
func (c *Config) TagBits() int    { return c.AddressBits - c.OffsetBits() - c.IndexBits() }

// Validate enforces every configuration-error rule in spec §7.1: power of
// two geometry, exact divisibility into sets, a protocol we recognize, and
// an address width wide enough to carry offset + index bits.
func (c *Config) Validate() error {
	if c.Protocol != MESI && c.Protocol != Dragon {
		return NewConfigError("unknown protocol %q", c.Protocol)
	}
	if !IsPowerOfTwo(c.CacheSize) {
		return NewConfigError("cache_size %d is not a power of two", c.CacheSize)
	}
	if !IsPowerOfTwo(c.Associativity) {
		return NewConfigError("associativity %d is not a power of two", c.Associativity)
	}
	if !IsPowerOfTwo(c.BlockSize) {
		return NewConfigError("block_size %d is not a power of two", c.BlockSize)
	}
	denom := c.BlockSize * c.Associativity
	if denom == 0 || c.CacheSize%denom != 0 {
		return NewConfigError("cache_size %d not divisible by block_size*associativity (%d)", c.CacheSize, denom)
	}
	numSets := c.NumSets()
	if numSets < 1 || !IsPowerOfTwo(numSets) {
		return NewConfigError("infeasible set count %d derived from geometry", numSets)
	}
	if c.AddressBits <= 0 {
		c.AddressBits = 32
	}
	if c.OffsetBits()+c.IndexBits() > c.AddressBits {
		return NewConfigError("offset_bits(%d)+index_bits(%d) exceed address width %d",
			c.OffsetBits(), c.IndexBits(), c.AddressBits)
	}
	return nil
}
