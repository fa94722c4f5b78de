package main

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr    string
	Backend     string // memory | sqlite | mysql | redis
	MySQLDSN    string
	RedisAddr   string
	SQLitePath  string
	RabbitURL   string
	RabbitQueue string
	CORSOrigins []string
	StockSeed   map[string]string // item id -> initial count, from STOCK_SEED
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:    getenv("STOCK_HTTP_ADDR", ":8080"),
		Backend:     getenv("STOCK_BACKEND", "memory"),
		MySQLDSN:    getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/stocksync?parseTime=true"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		SQLitePath:  getenv("STOCK_SQLITE_PATH", "stock.db"),
		RabbitURL:   getenv("RABBITMQ_URL", ""),
		RabbitQueue: getenv("RABBITMQ_STOCK_QUEUE", "stock.updated"),
		CORSOrigins: strings.Split(getenv("CORS_ORIGINS", "*"), ","),
		StockSeed:   parseSeed(getenv("STOCK_SEED", "")),
	}
}

// parseSeed reads "sku-1=10,sku-2=5" into a map. Malformed pairs are
// skipped; the server still starts.
func parseSeed(raw string) map[string]string {
	out := make(map[string]string)
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, ",") {
		id, count, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || id == "" || count == "" {
			continue
		}
		out[id] = count
	}
	return out
}
