package kgresponder

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface required for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the kg-responder component with the given registry.
func Register(registry RegistryInterface, svc Services) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name: "kg-responder",
		Factory: func(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
			return NewComponent(rawConfig, deps, svc)
		},
		Schema:      kgResponderSchema,
		Type:        "processor",
		Protocol:    "nats",
		Domain:      "fmea",
		Description: "NATS request/reply service for FMEA queries and ingestion",
		Version:     "0.1.0",
	})
}
