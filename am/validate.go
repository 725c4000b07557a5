package am

import "github.com/teranos/mmgen/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := c.GeneratorOptions().Validate(); err != nil {
		return errors.Wrap(err, "invalid [generator] section")
	}

	// Base catalog must be one we ship
	if _, err := c.BuildCatalog(); err != nil {
		return errors.Wrap(err, "invalid [catalog] section")
	}
	for _, name := range c.Catalog.Known {
		if name == "" {
			return errors.New("catalog.known must not contain empty names")
		}
	}

	if c.Source.TimeoutSeconds < 0 {
		return errors.Newf("source.timeout_seconds must be >= 0, got %d", c.Source.TimeoutSeconds)
	}

	// Debounce: 0 = use default, negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	return nil
}
