package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	JWTSecret   string

	// Media pipeline
	CloudinaryURL   string
	UploadDir       string
	UploadURLPrefix string
	UploadFolder    string
	RemoteHost      string
	PlaceholderURL  string
	UploadQueueSize int
	UploadTimeout   int // seconds, per remote upload attempt
}

// Load reads configuration from the environment with sensible defaults.
func Load() Config {
	return Config{
		HTTPAddr:    get("HTTP_ADDR", ":8080"),
		DatabaseURL: get("DATABASE_URL", ""),
		JWTSecret:   get("JWT_SECRET", ""),

		CloudinaryURL:   get("CLOUDINARY_URL", ""),
		UploadDir:       get("UPLOAD_DIR", "uploads/products"),
		UploadURLPrefix: get("UPLOAD_URL_PREFIX", "/uploads/products"),
		UploadFolder:    get("UPLOAD_FOLDER", "ecommerce/products"),
		RemoteHost:      get("REMOTE_IMAGE_HOST", "res.cloudinary.com"),
		PlaceholderURL:  get("PLACEHOLDER_IMAGE_URL", "/placeholder-image.png"),
		UploadQueueSize: getInt("UPLOAD_QUEUE_SIZE", 64),
		UploadTimeout:   getInt("UPLOAD_TIMEOUT_SECONDS", 30),
	}
}

func get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
