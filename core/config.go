package core

import (
	"fmt"
	"strings"
	"time"
)

type ProvisioningConfig struct {
	MaxAttempts             int           `koanf:"max_attempts" mapstructure:"max_attempts"`
	RetryBackoff            time.Duration `koanf:"retry_backoff" mapstructure:"retry_backoff"`
	CreationPollDelay       time.Duration `koanf:"creation_poll_delay" mapstructure:"creation_poll_delay"`
	PollInterval            time.Duration `koanf:"poll_interval" mapstructure:"poll_interval"`
	ReplicationPollInterval time.Duration `koanf:"replication_poll_interval" mapstructure:"replication_poll_interval"`
	LeaseTTL                time.Duration `koanf:"lease_ttl" mapstructure:"lease_ttl"`
}

type IntakeConfig struct {
	ListPageSize int `koanf:"list_page_size" mapstructure:"list_page_size"`
}

type Config struct {
	ServiceName  string             `koanf:"service_name" mapstructure:"service_name"`
	Provisioning ProvisioningConfig `koanf:"provisioning" mapstructure:"provisioning"`
	Intake       IntakeConfig       `koanf:"intake" mapstructure:"intake"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "team-requests",
		Provisioning: ProvisioningConfig{
			MaxAttempts:             3,
			RetryBackoff:            30 * time.Second,
			CreationPollDelay:       5 * time.Second,
			PollInterval:            10 * time.Second,
			ReplicationPollInterval: 10 * time.Second,
			LeaseTTL:                10 * time.Minute,
		},
		Intake: IntakeConfig{
			ListPageSize: 25,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Provisioning.MaxAttempts < 0 {
		return fmt.Errorf("core: provisioning.max_attempts must not be negative")
	}
	if c.Provisioning.RetryBackoff < 0 ||
		c.Provisioning.CreationPollDelay < 0 ||
		c.Provisioning.PollInterval < 0 ||
		c.Provisioning.ReplicationPollInterval < 0 {
		return fmt.Errorf("core: provisioning delays must not be negative")
	}
	if c.Intake.ListPageSize < 0 {
		return fmt.Errorf("core: intake.list_page_size must not be negative")
	}
	return nil
}
