package main

import (
	flags "github.com/jessevdk/go-flags"
)

// config holds payd's process-level flags, grounded on the teacher's own
// top-level config.go use of github.com/jessevdk/go-flags.
type config struct {
	DebugLevel string `long:"debuglevel" description:"Logging level for all subsystems" default:"info"`

	RiskFactor    float64 `long:"riskfactor" description:"Default risk factor applied to route requests" default:"1.0"`
	MaxFeePercent float64 `long:"maxfeepercent" description:"Default fee ceiling as a percentage of the payment amount" default:"0.5"`
}

// loadConfig parses command line flags into a config with payd's
// defaults pre-populated.
func loadConfig() (*config, error) {
	cfg := config{
		DebugLevel:    "info",
		RiskFactor:    1.0,
		MaxFeePercent: 0.5,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
