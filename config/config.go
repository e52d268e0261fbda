package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB      int    `mapstructure:"REDIS_AUTH_DB"`
	RedisTaskqueueDB int    `mapstructure:"REDIS_TASKQUEUE_DB"`

	// Platform commission in basis points (500 = 5%).
	CommissionBps int `mapstructure:"COMMISSION_BPS"`

	// M-Pesa Daraja credentials.
	MpesaEnvironment    string `mapstructure:"MPESA_ENVIRONMENT"` // sandbox or production
	MpesaConsumerKey    string `mapstructure:"MPESA_CONSUMER_KEY"`
	MpesaConsumerSecret string `mapstructure:"MPESA_CONSUMER_SECRET"`
	MpesaShortCode      string `mapstructure:"MPESA_SHORT_CODE"`
	MpesaPassKey        string `mapstructure:"MPESA_PASS_KEY"`
	CallbackBaseURL     string `mapstructure:"CALLBACK_BASE_URL"`

	// Stripe (card payments).
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Twilio WhatsApp notification channel.
	TwilioAccountSID   string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppFrom string `mapstructure:"TWILIO_WHATSAPP_FROM"`

	// Cloudinary storage for completion photos.
	CloudinaryURL string `mapstructure:"CLOUDINARY_URL"`

	// Weekly subscription plan amounts (smallest currency unit).
	SubscriptionBasicAmount   int64 `mapstructure:"SUBSCRIPTION_BASIC_AMOUNT"`
	SubscriptionPremiumAmount int64 `mapstructure:"SUBSCRIPTION_PREMIUM_AMOUNT"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_TASKQUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("COMMISSION_BPS", 500)
	viper.SetDefault("MPESA_ENVIRONMENT", "sandbox")
	viper.SetDefault("CALLBACK_BASE_URL", "http://localhost:8080")
	viper.SetDefault("SUBSCRIPTION_BASIC_AMOUNT", 10000)
	viper.SetDefault("SUBSCRIPTION_PREMIUM_AMOUNT", 20000)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// CommissionRate converts the configured basis points to a fraction.
func CommissionRate() float64 {
	return float64(AppConfig.CommissionBps) / 10000.0
}
