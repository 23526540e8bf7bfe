package main

import (
	"encoding/json"
	"os"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"llmgames/engine"
	"llmgames/game"
	"llmgames/game/connectfour"
	"llmgames/game/tictactoe"
	"llmgames/provider"
	"llmgames/server"
	"llmgames/session"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	registry := game.NewRegistry()
	registry.Register(tictactoe.New())
	registry.Register(connectfour.New())

	settings := server.NewSettings(loadProviderConfig())
	factory := provider.NewFactory()
	generator := engine.NewGenerator(factory, settings.Current)
	manager := session.NewManager(registry, generator)

	srv := server.New(session.NewStore(), manager, factory, settings)
	port := getEnv("PORT", "8080")
	log.Info().Str("port", port).Msg("starting llmgames server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// loadProviderConfig reads the provider configuration file from the
// user config dir, falling back to environment variables.
func loadProviderConfig() provider.Config {
	if path, err := xdg.SearchConfigFile("llmgames/provider.json"); err == nil {
		data, err := os.ReadFile(path)
		if err == nil {
			var cfg provider.Config
			if err := json.Unmarshal(data, &cfg); err == nil {
				log.Info().Str("path", path).Msg("loaded provider configuration")
				return cfg
			}
			log.Warn().Str("path", path).Err(err).Msg("unreadable provider configuration, using environment")
		}
	}

	return provider.Config{
		Provider:        provider.Vendor(getEnv("LLM_PROVIDER", "ollama")),
		Model:           getEnv("LLM_MODEL", "llama3.1"),
		URL:             os.Getenv("LLM_URL"),
		APIKey:          os.Getenv("LLM_API_KEY"),
		Region:          os.Getenv("AWS_REGION"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AzureInstance:   os.Getenv("AZURE_INSTANCE"),
		AzureDeployment: os.Getenv("AZURE_DEPLOYMENT"),
		AzureAPIVersion: os.Getenv("AZURE_API_VERSION"),
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
