package provider

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	t.Run("ollama needs only a model", func(t *testing.T) {
		res := ValidateConfig(Config{Provider: VendorOllama, Model: "llama3.1"})
		require.True(t, res.Valid)
		require.Empty(t, res.Errors)
	})

	t.Run("missing model", func(t *testing.T) {
		res := ValidateConfig(Config{Provider: VendorOllama})
		require.False(t, res.Valid)
		require.NotEmpty(t, res.Errors, "valid=false implies errors non-empty")
	})

	t.Run("ollama rejects an unparseable url", func(t *testing.T) {
		res := ValidateConfig(Config{Provider: VendorOllama, Model: "m", URL: "not a url"})
		require.False(t, res.Valid)
	})

	t.Run("openai key prefix is a hard error", func(t *testing.T) {
		res := ValidateConfig(Config{Provider: VendorOpenAI, Model: "gpt-4o", APIKey: "pk-wrong"})
		require.False(t, res.Valid)
		require.Contains(t, res.Errors[0], `"sk-"`)
		require.Empty(t, res.Warnings)
	})

	t.Run("openai accepts a well-formed key", func(t *testing.T) {
		res := ValidateConfig(Config{Provider: VendorOpenAI, Model: "gpt-4o", APIKey: "sk-abc123"})
		require.True(t, res.Valid)
	})

	t.Run("anthropic key prefix", func(t *testing.T) {
		res := ValidateConfig(Config{Provider: VendorAnthropic, Model: "claude-sonnet-4-5", APIKey: "sk-abc"})
		require.False(t, res.Valid)

		res = ValidateConfig(Config{Provider: VendorAnthropic, Model: "claude-sonnet-4-5", APIKey: "sk-ant-abc"})
		require.True(t, res.Valid)
	})

	t.Run("azure requires instance and deployment", func(t *testing.T) {
		res := ValidateConfig(Config{Provider: VendorAzure, Model: "gpt-4o", APIKey: "k"})
		require.False(t, res.Valid)
		require.Len(t, res.Errors, 2)
	})

	t.Run("azure missing api version is only a warning", func(t *testing.T) {
		res := ValidateConfig(Config{
			Provider: VendorAzure, Model: "gpt-4o", APIKey: "k",
			AzureInstance: "inst", AzureDeployment: "dep",
		})
		require.True(t, res.Valid)
		require.NotEmpty(t, res.Warnings)
	})

	t.Run("bedrock access key prefix", func(t *testing.T) {
		res := ValidateConfig(Config{
			Provider: VendorBedrock, Model: "anthropic.claude-3",
			Region: "us-east-1", AccessKeyID: "BADPREFIX", SecretAccessKey: "s",
		})
		require.False(t, res.Valid)

		res = ValidateConfig(Config{
			Provider: VendorBedrock, Model: "anthropic.claude-3",
			Region: "us-east-1", AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "s",
		})
		require.True(t, res.Valid)
	})

	t.Run("unknown vendor", func(t *testing.T) {
		res := ValidateConfig(Config{Provider: "gemini", Model: "m"})
		require.False(t, res.Valid)
	})
}
