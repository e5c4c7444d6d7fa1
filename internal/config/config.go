package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	IdentityServiceURL string // Base URL của Identity Oracle (checkDriver/checkEnforcer/checkAdmin)
	DriverDirectoryURL string // Base URL của Driver Directory (getDriver/{id})
	MailAPIURL         string // Endpoint của mail provider
	MailAPIKey         string
	MailFrom           string
	PaymentGatewayURL  string // Base URL của payment gateway (tạo payment intent)

	ExternalTimeout   time.Duration // Timeout cho mọi external HTTP call
	TicketGracePeriod time.Duration // Thời hạn nộp phạt kể từ lúc lập vé
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Cảnh báo: Không thể tải file .env: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	timeoutSecs, _ := strconv.Atoi(getEnv("EXTERNAL_TIMEOUT_SECONDS", "5"))
	graceDays, _ := strconv.Atoi(getEnv("TICKET_GRACE_DAYS", "14")) // Mặc định 14 ngày

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "parkwise"),
		DBPassword: getEnv("DB_PASSWORD", "parkwise"),
		DBName:     getEnv("DB_NAME", "parkwise_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		IdentityServiceURL: getEnv("IDENTITY_SERVICE_URL", "http://localhost:4000"),
		DriverDirectoryURL: getEnv("DRIVER_DIRECTORY_URL", "http://localhost:4001"),
		MailAPIURL:         getEnv("MAIL_API_URL", ""),
		MailAPIKey:         getEnv("MAIL_API_KEY", ""),
		MailFrom:           getEnv("MAIL_FROM", "no-reply@parkwise.app"),
		PaymentGatewayURL:  getEnv("PAYMENT_GATEWAY_URL", "http://localhost:4002"),

		ExternalTimeout:   time.Duration(timeoutSecs) * time.Second,
		TicketGracePeriod: time.Duration(graceDays) * 24 * time.Hour,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Biến môi trường '%s' không được đặt, sử dụng giá trị mặc định: '%s'", key, fallback)
	return fallback
}
