package kgapi

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface required for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the kg-api component with the given registry. Instances
// created by the registry serve svc.
func Register(registry RegistryInterface, svc Services) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name: "kg-api",
		Factory: func(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
			return NewComponent(rawConfig, deps, svc)
		},
		Schema:      kgAPISchema,
		Type:        "processor",
		Protocol:    "http",
		Domain:      "fmea",
		Description: "HTTP endpoints for FMEA queries, ingestion and export",
		Version:     "0.1.0",
	})
}
