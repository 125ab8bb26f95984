package env

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ListenAddr            = "LISTEN_ADDR"
	StoreBackend          = "STORE_BACKEND"
	AWSRegion             = "AWS_REGION"
	AWSID                 = "AWS_ID"
	AWSSecret             = "AWS_SECRET"
	AWSToken              = "AWS_TOKEN"
	DynamoDBEndpoint      = "DYNAMODB_ENDPOINT"
	ChatsTable            = "CHATS_TABLE"
	MessagesTable         = "MESSAGES_TABLE"
	CustomersTable        = "CUSTOMERS_TABLE"
	StaffUsersTable       = "STAFF_USERS_TABLE"
	ChatRedisURL          = "CHAT_REDIS_URL"
	ChatRedisPass         = "CHAT_REDIS_PASS"
	StaffSecretKey        = "STAFF_SECRET"
	CompletionURL         = "COMPLETION_URL"
	CompletionAPIKey      = "COMPLETION_API_KEY"
	CompletionModel       = "COMPLETION_MODEL"
	CompletionTimeout     = "COMPLETION_TIMEOUT"
	AllowedOrigins        = "ALLOWED_ORIGINS"
	HTTPWorkers           = "HTTP_WORKERS"
	EngineWorkers         = "ENGINE_WORKERS"
	FollowUpDelay         = "FOLLOW_UP_DELAY"
	AssignOnlyIfUnclaimed = "ASSIGN_ONLY_IF_UNCLAIMED"
	SeedStaffEmail        = "SEED_STAFF_EMAIL"
	SeedStaffPassword     = "SEED_STAFF_PASSWORD"
	SeedStaffName         = "SEED_STAFF_NAME"
	StaffTokenTTL         = "STAFF_TOKEN_TTL"
)

// Load reads an optional .env file into the process environment. Variables
// that are already set win over the file.
func Load(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		log.Printf("[env] could not load .env: %v", err)
	}
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}

func Int(key string, defaultVal int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func Duration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func Bool(key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return b
}

func List(key, defaultVal string) []string {
	raw := GetOrDefault(key, defaultVal)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
