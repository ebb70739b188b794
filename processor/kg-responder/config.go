package kgresponder

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semstreams/component"
)

// kgResponderSchema holds the configuration schema generated from Config.
var kgResponderSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the kg-responder component.
type Config struct {
	// SubjectPrefix is prepended to every request and event subject.
	SubjectPrefix string `json:"subject_prefix" schema:"type:string,description:Prefix of the request and event subjects,category:basic,default:fmea"`

	// TimeoutSecs bounds the handling of a single request.
	TimeoutSecs int `json:"timeout_secs" schema:"type:int,description:Request handling timeout in seconds,category:advanced,default:5"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SubjectPrefix: "fmea",
		TimeoutSecs:   5,
	}
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = defaults.SubjectPrefix
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = defaults.TimeoutSecs
	}
}

// Validate verifies the configuration is consistent.
func (c *Config) Validate() error {
	if c.TimeoutSecs < 0 {
		return fmt.Errorf("timeout_secs must be non-negative")
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}
