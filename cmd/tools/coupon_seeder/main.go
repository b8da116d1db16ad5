package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-invoice/internal/coupon"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	key := flag.String("key", envOr("COUPON_REDIS_KEY", coupon.DefaultRedisKey), "redis hash holding coupon amounts")
	codes := flag.String("codes", os.Getenv("COUPON_CODES"), "comma separated CODE=AMOUNT pairs, defaults to the built-in table")
	flag.Parse()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Fatal("REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	table := coupon.DefaultTable()
	if strings.TrimSpace(*codes) != "" {
		table, err = coupon.ParseTable(strings.Split(*codes, ","))
		if err != nil {
			log.Fatalf("Invalid coupon codes: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resolver := coupon.NewRedisResolver(client, *key)
	if err := resolver.Ping(ctx, 0); err != nil {
		log.Fatalf("Failed to ping redis: %v", err)
	}
	if err := resolver.Seed(ctx, table); err != nil {
		log.Fatalf("Failed to seed coupons: %v", err)
	}
	for code, amount := range table {
		log.Printf("Seeded %s = %s", code, amount.String())
	}
	log.Printf("Seeding completed into %s", *key)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
