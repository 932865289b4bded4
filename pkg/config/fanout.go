package config

import "time"

// FanoutConfig configures the external-call aggregator.
type FanoutConfig struct {
	// Targets is the fixed set of upstream URLs queried by the demo.
	Targets []string

	// CallTimeout applies independently to every outbound call.
	CallTimeout time.Duration

	// MaxConcurrent bounds in-flight calls; 0 means unbounded.
	MaxConcurrent int
}

func loadFanoutConfig() FanoutConfig {
	return FanoutConfig{
		Targets: getEnvStringSlice("FANOUT_TARGETS", []string{
			"https://jsonplaceholder.typicode.com/posts/1",
			"https://jsonplaceholder.typicode.com/comments/1",
			"https://jsonplaceholder.typicode.com/albums/1",
		}),
		CallTimeout:   getEnvDuration("FANOUT_CALL_TIMEOUT", 5*time.Second),
		MaxConcurrent: getEnvInt("FANOUT_MAX_CONCURRENT", 0),
	}
}

// ProbeConfig configures the performance comparison endpoint.
type ProbeConfig struct {
	// UnitCount is how many simulated work units the probe dispatches.
	UnitCount int

	// UnitDuration is the simulated wait of each unit.
	UnitDuration time.Duration
}

func loadProbeConfig() ProbeConfig {
	return ProbeConfig{
		UnitCount:    getEnvInt("PROBE_UNIT_COUNT", 3),
		UnitDuration: getEnvDuration("PROBE_UNIT_DURATION", time.Second),
	}
}
