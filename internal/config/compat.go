// SPDX-License-Identifier: MIT
package config

import (
	"dtmf/internal/acquire"
	"dtmf/internal/pipeline"
)

// AcquireSettings returns the sampler and calibrator parameters.
func (c *Config) AcquireSettings() acquire.Settings {
	return acquire.Settings{
		RawFullScale: c.Audio.RawFullScale,
		MaxAmplitude: c.Audio.MaxAmplitude,
		StraddleSpan: c.Calibration.StraddleSpan,
		ConfirmTicks: c.Calibration.ConfirmTicks,
		AutoConfirm:  c.Calibration.AutoConfirm,
	}
}

// PipelineOptions returns the main loop options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		PollInterval:    c.Pipeline.PollInterval,
		ResetOnOverflow: c.Pipeline.ResetOnOverflow,
	}
}
