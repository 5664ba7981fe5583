package agent

import "flight-extractor/pkg/logger"

// Option configures an Agent
type Option func(c *Config)

// WithAgentID sets the remote agent id
func WithAgentID(id string) Option {
	return func(c *Config) {
		c.agentID = id
	}
}

// WithModel sets the model the remote agent runs on
func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

// WithInstructions sets the agent prompt
func WithInstructions(instructions string) Option {
	return func(c *Config) {
		c.instructions = instructions
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temperature float64) Option {
	return func(c *Config) {
		c.temperature = &temperature
	}
}

// WithSchemaID pins a schema id and skips registration
func WithSchemaID(id int) Option {
	return func(c *Config) {
		c.schemaID = id
	}
}

// WithUseCache sets the service cache policy ("auto", "always" or "never")
func WithUseCache(policy string) Option {
	return func(c *Config) {
		c.useCache = policy
	}
}

// WithLogger sets the agent logger
func WithLogger(l logger.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}
