package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Highlight: "color",
			Format:    "text",
		},
		Compare: CompareConfig{
			Exclude: nil,
		},
		Cache: CacheConfig{
			Disabled: false,
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)
	result.Compare = mergeCompareConfig(loaded.Compare, defaults.Compare)

	// Cache.Disabled: the zero value means enabled, so the loaded value
	// is always authoritative.
	result.Cache = loaded.Cache

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	// Highlight: use loaded if non-empty
	if loaded.Highlight != "" {
		result.Highlight = loaded.Highlight
	} else {
		result.Highlight = defaults.Highlight
	}

	// Format: use loaded if non-empty
	if loaded.Format != "" {
		result.Format = loaded.Format
	} else {
		result.Format = defaults.Format
	}

	return result
}

func mergeCompareConfig(loaded, defaults CompareConfig) CompareConfig {
	result := CompareConfig{}

	// Use loaded exclude patterns if provided, otherwise defaults
	if len(loaded.Exclude) > 0 {
		result.Exclude = loaded.Exclude
	} else {
		result.Exclude = defaults.Exclude
	}

	return result
}
