package config

import (
	"fmt"
	"strings"
	"time"

	"support-chat-backend/internal/env"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Config holds everything the server binaries need at start-up.
type Config struct {
	ListenAddr   string
	StoreBackend string

	AWSRegion        string
	AWSID            string
	AWSSecret        string
	AWSToken         string
	DynamoDBEndpoint string
	Tables           Tables

	RedisAddr string
	RedisPass string

	StaffSecret   string
	StaffTokenTTL time.Duration
	// SeedStaff is created at start-up unless the email already exists.
	SeedStaff *SeedStaff

	CompletionURL     string
	CompletionAPIKey  string
	CompletionModel   string
	CompletionTimeout time.Duration

	AllowedOrigins []string

	HTTPWorkers   int
	EngineWorkers int

	FollowUpDelay         time.Duration
	AssignOnlyIfUnclaimed bool
}

type SeedStaff struct {
	Email    string
	Password string
	Name     string
}

type Tables struct {
	Chats      string
	Messages   string
	Customers  string
	StaffUsers string
}

// Load builds a Config from the environment, applying defaults for
// everything that has a sensible local value.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:       env.GetOrDefault(env.ListenAddr, ":3000"),
		StoreBackend:     strings.ToLower(env.GetOrDefault(env.StoreBackend, BackendDynamoDB)),
		AWSRegion:        env.Get(env.AWSRegion),
		AWSID:            env.Get(env.AWSID),
		AWSSecret:        env.Get(env.AWSSecret),
		AWSToken:         env.Get(env.AWSToken),
		DynamoDBEndpoint: env.Get(env.DynamoDBEndpoint),
		Tables: Tables{
			Chats:      env.GetOrDefault(env.ChatsTable, "Chats"),
			Messages:   env.GetOrDefault(env.MessagesTable, "LiveChatMessages"),
			Customers:  env.GetOrDefault(env.CustomersTable, "LiveChatUsers"),
			StaffUsers: env.GetOrDefault(env.StaffUsersTable, "StaffUsers"),
		},
		RedisAddr:             env.Get(env.ChatRedisURL),
		RedisPass:             env.Get(env.ChatRedisPass),
		StaffSecret:           env.Get(env.StaffSecretKey),
		StaffTokenTTL:         env.Duration(env.StaffTokenTTL, 12*time.Hour),
		CompletionURL:         env.GetOrDefault(env.CompletionURL, "https://api.openai.com/v1/chat/completions"),
		CompletionAPIKey:      env.Get(env.CompletionAPIKey),
		CompletionModel:       env.GetOrDefault(env.CompletionModel, "gpt-4o-mini"),
		CompletionTimeout:     env.Duration(env.CompletionTimeout, 20*time.Second),
		AllowedOrigins:        env.List(env.AllowedOrigins, "http://localhost:3000,http://localhost:5173"),
		HTTPWorkers:           env.Int(env.HTTPWorkers, 16),
		EngineWorkers:         env.Int(env.EngineWorkers, 4),
		FollowUpDelay:         env.Duration(env.FollowUpDelay, 0),
		AssignOnlyIfUnclaimed: env.Bool(env.AssignOnlyIfUnclaimed),
	}

	if email := env.Get(env.SeedStaffEmail); email != "" {
		cfg.SeedStaff = &SeedStaff{
			Email:    email,
			Password: env.Get(env.SeedStaffPassword),
			Name:     env.GetOrDefault(env.SeedStaffName, "Support"),
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendDynamoDB:
		if c.AWSRegion == "" {
			return fmt.Errorf("config: %s is required for the dynamodb store", env.AWSRegion)
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.StoreBackend)
	}
	if c.SeedStaff != nil && c.SeedStaff.Password == "" {
		return fmt.Errorf("config: %s is required with %s", env.SeedStaffPassword, env.SeedStaffEmail)
	}
	if c.StaffSecret == "" {
		return fmt.Errorf("config: %s is required", env.StaffSecretKey)
	}
	return nil
}
