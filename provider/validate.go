package provider

import (
	"net/url"
	"strings"
)

// ValidateConfig checks a provider configuration locally: field presence
// per vendor, plus credential format where the vendor enforces a
// recognizable prefix. Format violations are hard errors, not warnings -
// a key with the wrong prefix will never authenticate.
func ValidateConfig(cfg Config) ValidationResult {
	res := ValidationResult{Valid: true}

	if cfg.Model == "" {
		res.addError("model is required")
	}

	switch cfg.Provider {
	case VendorOllama:
		if cfg.URL != "" {
			if _, err := url.ParseRequestURI(cfg.URL); err != nil {
				res.addError("url %q is not a valid URL", cfg.URL)
			}
		}
	case VendorOpenAI:
		if cfg.APIKey == "" {
			res.addError("apiKey is required for openai")
		} else if !strings.HasPrefix(cfg.APIKey, "sk-") {
			res.addError("openai API keys start with \"sk-\"")
		}
	case VendorAnthropic:
		if cfg.APIKey == "" {
			res.addError("apiKey is required for anthropic")
		} else if !strings.HasPrefix(cfg.APIKey, "sk-ant-") {
			res.addError("anthropic API keys start with \"sk-ant-\"")
		}
	case VendorAzure:
		if cfg.APIKey == "" {
			res.addError("apiKey is required for azure")
		}
		if cfg.AzureInstance == "" {
			res.addError("azureInstance is required for azure")
		}
		if cfg.AzureDeployment == "" {
			res.addError("azureDeployment is required for azure")
		}
		if cfg.AzureAPIVersion == "" {
			res.addWarning("azureApiVersion not set, using %s", defaultAzureAPIVersion)
		}
	case VendorBedrock:
		if cfg.Region == "" {
			res.addError("region is required for bedrock")
		}
		if cfg.AccessKeyID == "" {
			res.addError("accessKeyId is required for bedrock")
		} else if !strings.HasPrefix(cfg.AccessKeyID, "AKIA") && !strings.HasPrefix(cfg.AccessKeyID, "ASIA") {
			res.addError("AWS access key IDs start with \"AKIA\" or \"ASIA\"")
		}
		if cfg.SecretAccessKey == "" {
			res.addError("secretAccessKey is required for bedrock")
		}
	case "":
		res.addError("provider is required")
	default:
		res.addError("unsupported provider %q", cfg.Provider)
	}

	return res
}
