package objectstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wqeqwqeq/drctl/internal/platform/env"
)

type Config struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Region      string
	UseSSL      bool
	BucketPlans string
}

func ConfigFromEnv() (Config, error) {
	useSSL, err := env.Bool("DRCTL_STORE_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Endpoint:    env.String("DRCTL_STORE_ENDPOINT", "localhost:9000"),
		AccessKey:   env.String("DRCTL_STORE_ACCESS_KEY", "drctl"),
		SecretKey:   env.String("DRCTL_STORE_SECRET_KEY", "drctlstore"),
		Region:      env.String("DRCTL_STORE_REGION", "us-east-1"),
		UseSSL:      useSSL,
		BucketPlans: env.String("DRCTL_STORE_BUCKET_PLANS", "dr-plans"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Region) == "" {
		return errors.New("region is required")
	}
	if strings.TrimSpace(c.BucketPlans) == "" {
		return errors.New("plans bucket is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}
