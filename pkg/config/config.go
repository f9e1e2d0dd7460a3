package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	MetadataBackendPostgres = "postgres"
	MetadataBackendMongo    = "mongo"

	StorageBackendS3  = "s3"
	StorageBackendGCS = "gcs"
)

type Config struct {
	Server   ServerConfig
	Metadata MetadataConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Storage  StorageConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// SignConcurrency bounds the number of download URLs signed in parallel
	// while listing bills.
	SignConcurrency int
}

type MetadataConfig struct {
	Backend string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MongoConfig struct {
	URI      string
	Database string
}

type StorageConfig struct {
	Backend string
	Bucket  string

	// S3 and S3-compatible endpoints.
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool

	// GCS
	CredentialsFile string
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for Docker/K8s
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	signConcurrency, _ := strconv.Atoi(getEnv("SIGN_CONCURRENCY", "8"))
	usePathStyle := getEnv("S3_USE_PATH_STYLE", "false") == "true"

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     time.Duration(readTimeout) * time.Second,
			WriteTimeout:    time.Duration(writeTimeout) * time.Second,
			SignConcurrency: signConcurrency,
		},
		Metadata: MetadataConfig{
			Backend: getEnv("METADATA_BACKEND", MetadataBackendPostgres),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "billtrack"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "billtrack"),
		},
		Storage: StorageConfig{
			Backend:         getEnv("STORAGE_BACKEND", StorageBackendS3),
			Bucket:          getEnv("S3_BUCKET_NAME", "bills"),
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			UsePathStyle:    usePathStyle,
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
