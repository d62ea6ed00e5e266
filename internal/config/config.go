// Package config содержит логику чтения конфигурации сервиса витрины.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress     = "localhost:8080"
	defaultBrand          = "default"
	defaultPaymentAddress = "https://api.razorpay.com"
)

// Config содержит параметры конфигурации сервиса витрины.
type Config struct {
	RunAddress            string `env:"RUN_ADDRESS"`
	DatabaseURI           string `env:"DATABASE_URI"`
	AuthSecret            string `env:"AUTH_SECRET"`
	Brand                 string `env:"STOREFRONT_BRAND"`
	PaymentGatewayAddress string `env:"PAYMENT_GATEWAY_ADDRESS"`
	PaymentKeyID          string `env:"PAYMENT_KEY_ID"`
	PaymentKeySecret      string `env:"PAYMENT_KEY_SECRET"`

	// Учётная запись администратора франшизы, создаваемая при старте.
	AdminLogin    string `env:"ADMIN_LOGIN"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fromEnv := *cfg

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret for signing auth cookies and rider links")
	flag.StringVar(&cfg.Brand, "b", defaultBrand, "storefront brand")
	flag.StringVar(&cfg.PaymentGatewayAddress, "p", defaultPaymentAddress, "payment gateway address")

	flag.Parse()

	override(&cfg.RunAddress, fromEnv.RunAddress)
	override(&cfg.DatabaseURI, fromEnv.DatabaseURI)
	override(&cfg.AuthSecret, fromEnv.AuthSecret)
	override(&cfg.Brand, fromEnv.Brand)
	override(&cfg.PaymentGatewayAddress, fromEnv.PaymentGatewayAddress)
	cfg.PaymentKeyID = fromEnv.PaymentKeyID
	cfg.PaymentKeySecret = fromEnv.PaymentKeySecret
	cfg.AdminLogin = fromEnv.AdminLogin
	cfg.AdminPassword = fromEnv.AdminPassword

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.Brand == "" {
		cfg.Brand = defaultBrand
	}

	return cfg, nil
}

func override(dst *string, envValue string) {
	if envValue != "" {
		*dst = envValue
	}
}
