package engine

import "github.com/msgflo/msgflo-cpp/internal/config"

const defaultDiscoveryPeriod = 60

// Config is the set of options recognized by CreateEngine. An empty URL
// falls back to MSGFLO_BROKER and a zero DiscoveryPeriod to 60 seconds;
// DebugOutput is read from the environment only by NewConfig.
type Config struct {
	URL             string
	DebugOutput     bool
	DiscoveryPeriod int
}

// NewConfig fills in the env-driven and numeric defaults via
// config.FromEnv: URL from MSGFLO_BROKER (ResolveBrokerURL re-reads it
// directly if left empty here), DebugOutput from whether MSGFLO_CPP_DEBUG
// is set, DiscoveryPeriod from MSGFLO_DISCOVERY_PERIOD or else 60 seconds.
func NewConfig() Config {
	fc := config.FromEnv()
	c := Config{
		URL:             fc.URL,
		DebugOutput:     fc.DebugOutput,
		DiscoveryPeriod: defaultDiscoveryPeriod,
	}
	if fc.DiscoveryPeriod > 0 {
		c.DiscoveryPeriod = fc.DiscoveryPeriod
	}
	return c
}

// resolvedDiscoveryPeriod applies the zero-value default without mutating
// the caller's Config, so a Config built by hand (rather than NewConfig)
// still gets the default when DiscoveryPeriod is left unset.
func (c Config) resolvedDiscoveryPeriod() int {
	if c.DiscoveryPeriod <= 0 {
		return defaultDiscoveryPeriod
	}
	return c.DiscoveryPeriod
}

// announceInterval is the actual tick period of the discovery loop:
// discoveryPeriod/3, so a redelivered-but-still-running participant
// re-announces well before a watcher's discoveryPeriod timeout expires.
func (c Config) announceInterval() int {
	return c.resolvedDiscoveryPeriod() / 3
}
