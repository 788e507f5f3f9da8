package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// SubsystemComponents is the RNG subsystem for component dwell and repair times.
// Uses the master seed directly so that a run's seed is its stream.
const SubsystemComponents = "components"

// SubsystemReplica returns the subsystem name for Monte-Carlo replication i.
func SubsystemReplica(i int) string {
	return fmt.Sprintf("replica_%d", i)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemComponents: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Each run owns its own PartitionedRNG.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(deriveSeed(int64(p.key), name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// ReplicaSeed derives the seed of Monte-Carlo replication i from a master seed.
// Replication 0 uses the master seed itself, so a single-run invocation and the
// first replication of a sweep are the same run.
func ReplicaSeed(master int64, i int) int64 {
	if i == 0 {
		return master
	}
	return master ^ fnv1a64(SubsystemReplica(i))
}

func deriveSeed(master int64, name string) int64 {
	if name == SubsystemComponents {
		return master
	}
	return master ^ fnv1a64(name)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === Clock source ===

// ClockSource produces dwell times. Draw takes the distribution MEAN, not the rate.
type ClockSource interface {
	Draw(mean float64) float64
}

// ExponentialClock draws exponentially distributed dwell times from a seeded stream.
type ExponentialClock struct {
	rng *rand.Rand
}

// NewExponentialClock wraps rng. Panics on nil.
func NewExponentialClock(rng *rand.Rand) *ExponentialClock {
	if rng == nil {
		panic("NewExponentialClock: rng must not be nil")
	}
	return &ExponentialClock{rng: rng}
}

// Draw returns a sample from Exp(1/mean).
func (c *ExponentialClock) Draw(mean float64) float64 {
	return c.rng.ExpFloat64() * mean
}
