package config

import "os"

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	API    APIConfig
}

type ServerConfig struct {
	Addr string
	// BaseURL is the externally visible origin of this app, used to build
	// the OAuth redirect URI (e.g. https://greetings.example.com).
	BaseURL string
}

type AuthConfig struct {
	ClientID     string
	ClientSecret string
	// Authority is the OIDC issuer URL of the identity provider tenant.
	Authority string
	// Audience is the backend API's application ID URI; the access token
	// scope is derived from it (<audience>/access_as_user).
	Audience string
}

type APIConfig struct {
	BaseURL string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr:    getenv("LISTEN_ADDR", ":8080"),
			BaseURL: getenv("APP_BASE_URL", "http://localhost:8080"),
		},
		Auth: AuthConfig{
			ClientID:     os.Getenv("CLIENT_ID"),
			ClientSecret: os.Getenv("CLIENT_SECRET"),
			Authority:    os.Getenv("AUTHORITY"),
			Audience:     os.Getenv("API_AUDIENCE"),
		},
		API: APIConfig{
			BaseURL: os.Getenv("API_URL"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
