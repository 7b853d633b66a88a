package cycle

import "time"

// Config is the configuration of one controller.
type Config struct {
	ID         string                 `yaml:"id" json:"id"`
	Name       string                 `yaml:"name" json:"name"`
	Type       string                 `yaml:"type" json:"type"`
	Enabled    bool                   `yaml:"enabled" json:"enabled"`
	Parameters map[string]interface{} `yaml:"parameters" json:"parameters"`
}

// GetParameterInt retrieves an integer parameter with a default.
func (c *Config) GetParameterInt(key string, defaultValue int) int {
	if val, ok := c.Parameters[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return defaultValue
}

// GetParameterString retrieves a string parameter with a default.
func (c *Config) GetParameterString(key string, defaultValue string) string {
	if val, ok := c.Parameters[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

// GetParameterBool retrieves a boolean parameter with a default.
func (c *Config) GetParameterBool(key string, defaultValue bool) bool {
	if val, ok := c.Parameters[key]; ok {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}

// GetParameterDuration retrieves a duration parameter with a default.
// Integers are read as seconds.
func (c *Config) GetParameterDuration(key string, defaultValue time.Duration) time.Duration {
	if val, ok := c.Parameters[key]; ok {
		switch v := val.(type) {
		case time.Duration:
			return v
		case int:
			return time.Duration(v) * time.Second
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				return d
			}
		}
	}
	return defaultValue
}
