package middleware

import (
	"log"

	"github.com/rs/cors"
)

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

func NewCORS(config CORSConfig) *cors.Cors {
	c := cors.New(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   config.AllowedMethods,
		AllowedHeaders:   config.AllowedHeaders,
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: config.AllowCredentials,
		MaxAge:           300,
	})
	log.Printf("[api] cors allowed origins: %v", config.AllowedOrigins)
	return c
}
