package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Dosada05/tennis-roundrobin/scoring"
	"github.com/Dosada05/tennis-roundrobin/storage"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	// Пустой DatabaseURL означает хранение турниров в памяти процесса.
	DatabaseURL           string
	JWTSecretKey          string
	ServerPort            int
	OrganizerPasswordHash string
	CORSAllowedOrigins    []string
	Rules                 scoring.Rules
	// R2 равен nil, если экспорт не настроен.
	R2 *storage.CloudflareR2UploaderConfig
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	rules := scoring.DefaultRules()
	if path := os.Getenv("RULES_FILE"); path != "" {
		rules, err = LoadRules(path)
		if err != nil {
			return nil, err
		}
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = splitList(raw)
	}

	cfg := &Config{
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		JWTSecretKey:          jwtKey,
		ServerPort:            port,
		OrganizerPasswordHash: os.Getenv("ORGANIZER_PASSWORD_HASH"),
		CORSAllowedOrigins:    origins,
		Rules:                 rules,
		R2:                    loadR2(),
	}

	return cfg, nil
}

func loadR2() *storage.CloudflareR2UploaderConfig {
	r2 := storage.CloudflareR2UploaderConfig{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	if r2.AccountID == "" || r2.BucketName == "" {
		return nil
	}
	return &r2
}

// LoadRules reads scoring rules from a YAML file. Fields missing from the file
// keep their default values.
func LoadRules(path string) (scoring.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scoring.Rules{}, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (scoring.Rules, error) {
	rules := scoring.DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return scoring.Rules{}, fmt.Errorf("failed to parse rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return scoring.Rules{}, err
	}
	return rules, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
