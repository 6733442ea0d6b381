// Package config loads service configuration from the environment. Required
// keys fail Load as a group, so a misconfigured deployment reports every
// missing key at once.
package config

import (
	"fmt"
	"os"
	"strings"
)

type Razorpay struct {
	KeyID             string
	KeySecret         string
	PlatformAccountID string
}

type SenderProfile struct {
	Name  string
	Email string
}

type Mail struct {
	APIKey         string
	CustomerSender SenderProfile
	OwnerSender    SenderProfile
}

type Config struct {
	PostgresURL  string
	RedisAddr    string
	HTTPAddr     string
	AdminUserID  string
	FCMServerKey string
	Razorpay     Razorpay
	Mail         Mail
}

func Load() (Config, error) {
	var missing []string
	require := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	c := Config{
		PostgresURL:  require("POSTGRES_URL"),
		RedisAddr:    require("REDIS_ADDR"),
		HTTPAddr:     os.Getenv("HTTP_ADDR"),
		AdminUserID:  os.Getenv("ADMIN_USER_ID"),
		FCMServerKey: require("FCM_SERVER_KEY"),
		Razorpay: Razorpay{
			KeyID:             require("RAZORPAY_KEY_ID"),
			KeySecret:         require("RAZORPAY_KEY_SECRET"),
			PlatformAccountID: os.Getenv("RAZORPAY_PLATFORM_ACCOUNT_ID"),
		},
		Mail: Mail{
			APIKey: require("MAIL_API_KEY"),
			CustomerSender: SenderProfile{
				Name:  os.Getenv("MAIL_CUSTOMER_SENDER_NAME"),
				Email: require("MAIL_CUSTOMER_SENDER_EMAIL"),
			},
			OwnerSender: SenderProfile{
				Name:  os.Getenv("MAIL_OWNER_SENDER_NAME"),
				Email: require("MAIL_OWNER_SENDER_EMAIL"),
			},
		},
	}

	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return c, nil
}
