// Package provider abstracts heterogeneous model vendors behind a single
// capability: take a prompt, return text. It also owns configuration
// validation, the connectivity probe, and the fingerprint-keyed backend
// cache.
package provider

import (
	"context"
	"fmt"
)

// Backend is a callable model. Implementations wrap one vendor API and
// must be safe for concurrent use.
type Backend interface {
	// Invoke sends a complete prompt and returns the raw response text.
	Invoke(ctx context.Context, prompt string) (string, error)

	// Name returns the vendor tag, for logging.
	Name() string
}

// modelLister is implemented by backends that can enumerate the models
// available on the other side. Used by TestConnection to warn about a
// requested model that is not installed.
type modelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Vendor tags the supported model vendors.
type Vendor string

const (
	VendorOllama    Vendor = "ollama"
	VendorOpenAI    Vendor = "openai"
	VendorAnthropic Vendor = "anthropic"
	VendorAzure     Vendor = "azure"
	VendorBedrock   Vendor = "bedrock"
)

// Config is the provider configuration read from the settings
// collaborator. The engine never persists it; it is read and validated
// per call.
type Config struct {
	Provider        Vendor `json:"provider"`
	Model           string `json:"model"`
	URL             string `json:"url,omitempty"`
	APIKey          string `json:"apiKey,omitempty"`
	Region          string `json:"region,omitempty"`
	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`
	AzureInstance   string `json:"azureInstance,omitempty"`
	AzureDeployment string `json:"azureDeployment,omitempty"`
	AzureAPIVersion string `json:"azureApiVersion,omitempty"`
	CrossRegion     bool   `json:"crossRegion,omitempty"`
}

// ValidationResult is the outcome of configuration validation or a
// connectivity probe. Valid=false implies Errors is non-empty; warnings
// never affect validity.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *ValidationResult) addError(format string, args ...any) {
	v.Valid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *ValidationResult) addWarning(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
