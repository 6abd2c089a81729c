package engine

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Options tune the apply executor. They come from the process environment so
// CI jobs can adjust them without new flags.
type Options struct {
	// Parallelism is the maximum number of declarations applied at once.
	// 1 (the default) applies strictly in topological order.
	Parallelism int `env:"STACKCTL_PARALLELISM" envDefault:"1"`
	// ApplyTimeout bounds each individual provider call. Zero disables the
	// per-call timeout.
	ApplyTimeout time.Duration `env:"STACKCTL_APPLY_TIMEOUT" envDefault:"5m"`
}

// OptionsFromEnv parses Options from the process environment.
func OptionsFromEnv() (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("parse engine options from environment: %w", err)
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return opts, nil
}
