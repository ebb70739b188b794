package kgapi

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/c360studio/semstreams/component"
)

// kgAPISchema holds the configuration schema generated from Config.
var kgAPISchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the kg-api component.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr" schema:"type:string,description:HTTP listen address,category:basic"`

	// Prefix is the URL prefix of the FMEA endpoints.
	Prefix string `json:"prefix" schema:"type:string,description:URL prefix of the FMEA endpoints,category:basic,default:/api/fmea/"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:   ":8080",
		Prefix: "/api/fmea/",
	}
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Addr == "" {
		c.Addr = defaults.Addr
	}
	if c.Prefix == "" {
		c.Prefix = defaults.Prefix
	}
}

// Validate verifies the configuration is consistent.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Prefix, "/") {
		return fmt.Errorf("prefix must start with /")
	}
	return nil
}
