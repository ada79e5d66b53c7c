package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	ModeHTTP   = "http"
	ModePrompt = "prompt"
)

type Config struct {
	DataDir         string
	MenuFile        string
	StudentsFile    string
	InstructorsFile string
	StaffFile       string
	OrdersFile      string

	Mode     string
	HTTPPort string

	MongoDBConnectionString string
	MongoDBDatabaseName     string
	RabbitMQHostName        string
	RabbitMQExchange        string
	RabbitMQQueueName       string
}

func LoadConfig() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables only")
	}

	return FromEnv(), nil
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	config := &Config{
		DataDir:                 getEnv("CAFETERIA_DATA_DIR", "data"),
		Mode:                    getEnv("APP_MODE", ModeHTTP),
		HTTPPort:                getEnv("HTTP_PORT", "8080"),
		MongoDBConnectionString: os.Getenv("MONGODB_CONNECTION_STRING"),
		MongoDBDatabaseName:     getEnv("MONGODB_DATABASE_NAME", "cafeteria-db"),
		RabbitMQHostName:        os.Getenv("RABBITMQ_HOSTNAME"),
		RabbitMQExchange:        getEnv("RABBITMQ_EXCHANGE", "cafeteria_events"),
		RabbitMQQueueName:       getEnv("RABBITMQ_QUEUENAME", "cafeteria_events_queue"),
	}

	config.MenuFile = getEnv("CAFETERIA_MENU_FILE", filepath.Join(config.DataDir, "menu.csv"))
	config.StudentsFile = getEnv("CAFETERIA_STUDENTS_FILE", filepath.Join(config.DataDir, "students.csv"))
	config.InstructorsFile = getEnv("CAFETERIA_INSTRUCTORS_FILE", filepath.Join(config.DataDir, "instructors.csv"))
	config.StaffFile = getEnv("CAFETERIA_STAFF_FILE", filepath.Join(config.DataDir, "staff.csv"))
	config.OrdersFile = getEnv("CAFETERIA_ORDERS_FILE", filepath.Join(config.DataDir, "orders.csv"))

	return config
}

// ArchiveEnabled reports whether orders are also archived to MongoDB.
func (c *Config) ArchiveEnabled() bool {
	return c.MongoDBConnectionString != ""
}

// EventsEnabled reports whether order events are published to RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQHostName != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
