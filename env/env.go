package env

import (
	"os"

	"github.com/joho/godotenv"
)

var (
	HS256_SECRET    []byte
	DB_CONN         string
	APP_PORT        string
	APP_URL         string
	NSQD_TCP_ADDR   string
	NSQLOOKUPD_ADDR string
	SERVER_ID       string
)

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func init() {
	// best effort, deployments usually set the environment directly
	godotenv.Load()

	HS256_SECRET = []byte(getEnv("HS256_SECRET", "change-me"))
	DB_CONN = getEnv("DB_CONN", "host=localhost user=postgres password=postgres dbname=meetapp port=5432")
	APP_PORT = getEnv("APP_PORT", "3333")
	APP_URL = getEnv("APP_URL", "http://localhost:3333")
	NSQD_TCP_ADDR = getEnv("NSQD_TCP_ADDR", "127.0.0.1:4150")
	NSQLOOKUPD_ADDR = getEnv("NSQLOOKUPD_ADDR", "127.0.0.1:4161")
	SERVER_ID = getEnv("SERVER_ID", "meetapp-1")
}
