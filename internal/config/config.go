package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr            string
	MongoURI            string
	MongoDatabase       string
	MySQLDSN            string
	SeedBrokersFile     string
	RabbitMQURL         string
	RabbitExchange      string
	RabbitQueue         string
	RabbitRoutingKey    string
	RabbitConsumerTag   string
	RabbitPublishPrefix string
	SSEHeartbeat        time.Duration
	InboxLimit          int
	WSPingPeriod        time.Duration
	WSSendBuffer        int
	AllowedOrigins      []string
	OTELServiceName     string
	OTLPEndpoint        string
	OTLPInsecure        bool
	TraceSampleRatio    float64
	Release             bool
	LogLevel            string
	LogFile             string
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:            ":8080",
		MongoDatabase:       "realty",
		SSEHeartbeat:        15 * time.Second,
		InboxLimit:          0,
		WSPingPeriod:        54 * time.Second,
		WSSendBuffer:        32,
		RabbitExchange:      "notifications",
		RabbitQueue:         "notifications.dispatch",
		RabbitRoutingKey:    "notification.*",
		RabbitConsumerTag:   "dispatch-consumer",
		RabbitPublishPrefix: "notification",
		OTELServiceName:     "realty-notify",
		OTLPInsecure:        true,
		TraceSampleRatio:    1,
		LogLevel:            "info",
		LogFile:             "logs/app.log",
	}

	cfg.Release = os.Getenv("GIN_MODE") == "release"
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}

	cfg.MongoURI = os.Getenv("MONGO_URI")
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		cfg.MongoDatabase = v
	}
	cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	cfg.SeedBrokersFile = os.Getenv("SEED_BROKERS_FILE")
	cfg.RabbitMQURL = os.Getenv("RABBITMQ_URL")

	if v := os.Getenv("RABBITMQ_EXCHANGE"); v != "" {
		cfg.RabbitExchange = v
	}
	if v := os.Getenv("RABBITMQ_QUEUE"); v != "" {
		cfg.RabbitQueue = v
	}
	if v := os.Getenv("RABBITMQ_ROUTING_KEY"); v != "" {
		cfg.RabbitRoutingKey = v
	}
	if v := os.Getenv("RABBITMQ_CONSUMER_TAG"); v != "" {
		cfg.RabbitConsumerTag = v
	}
	if v := os.Getenv("RABBITMQ_PUBLISH_PREFIX"); v != "" {
		cfg.RabbitPublishPrefix = v
	}

	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.OTELServiceName = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OTLPInsecure = b
		}
	}

	if v := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.TraceSampleRatio = f
		}
	}

	if v := os.Getenv("SSE_HEARTBEAT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSEHeartbeat = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("WS_PING_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WSPingPeriod = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("WS_SEND_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WSSendBuffer = n
		}
	}

	if v := os.Getenv("INBOX_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.InboxLimit = n
		}
	}

	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
