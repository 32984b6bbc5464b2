package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port    int               `yaml:"port"`
		APIKeys map[string]string `yaml:"apiKeys"` // principal -> key
		RateLimit struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres | memory
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		BaseURL        string `yaml:"baseURL"` // empty = api.openai.com
		APIKey         string `yaml:"apiKey"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"ai"`

	Pipeline struct {
		MinAge            int      `yaml:"minAge"`
		MaxAge            int      `yaml:"maxAge"`
		MinMonthlyIncome  float64  `yaml:"minMonthlyIncome"`
		ApproveThreshold  float64  `yaml:"approveThreshold"`
		RejectThreshold   float64  `yaml:"rejectThreshold"`
		AllowedEmployment []string `yaml:"allowedEmployment"`
	} `yaml:"pipeline"`
}

// Load baca file config.yaml dan apply defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if cfg.Pipeline.RejectThreshold >= cfg.Pipeline.ApproveThreshold {
		return nil, fmt.Errorf("pipeline: rejectThreshold %.2f must be below approveThreshold %.2f",
			cfg.Pipeline.RejectThreshold, cfg.Pipeline.ApproveThreshold)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit.Capacity == 0 {
		c.Server.RateLimit.Capacity = 60
	}
	if c.Server.RateLimit.RefillRate == 0 {
		c.Server.RateLimit.RefillRate = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 30
	}
	if c.Pipeline.MinAge == 0 {
		c.Pipeline.MinAge = 18
	}
	if c.Pipeline.MaxAge == 0 {
		c.Pipeline.MaxAge = 100
	}
	if c.Pipeline.MinMonthlyIncome == 0 {
		c.Pipeline.MinMonthlyIncome = 2500
	}
	if c.Pipeline.ApproveThreshold == 0 {
		c.Pipeline.ApproveThreshold = 0.65
	}
	if c.Pipeline.RejectThreshold == 0 {
		c.Pipeline.RejectThreshold = 0.35
	}
	if len(c.Pipeline.AllowedEmployment) == 0 {
		c.Pipeline.AllowedEmployment = []string{
			"employed", "self_employed", "unemployed", "student", "retired",
		}
	}
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
