// Package config describes the fixed cluster topology: three market
// partitions, their listener endpoints, the reply timeout, and the
// audit pipeline settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/PeymanShobeiri/Distributed-System-Design/domain/market"
)

// NodeConfig is one partition's endpoint.
type NodeConfig struct {
	Partition string `json:"partition" validate:"required,len=3,alpha,uppercase"`
	Host      string `json:"host" validate:"required"`
	Port      int    `json:"port" validate:"required,gt=0,lte=65535"`
}

// Addr renders the node's listener address.
func (n NodeConfig) Addr() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

// KafkaConfig configures the optional audit publisher.
type KafkaConfig struct {
	Enabled bool     `json:"enabled"`
	Brokers []string `json:"brokers" validate:"required_if=Enabled true,omitempty,min=1,dive,hostname_port"`
	Topic   string   `json:"topic" validate:"required_if=Enabled true"`
}

// Config is the full process configuration.
type Config struct {
	Nodes          []NodeConfig `json:"nodes" validate:"required,min=1,dive"`
	ReplyTimeoutMS int          `json:"replyTimeoutMs" validate:"required,gt=0"`
	SpoolSize      int          `json:"spoolSize" validate:"required,gt=0"`
	Kafka          KafkaConfig  `json:"kafka"`
}

// Default mirrors the canonical three-partition topology.
func Default() Config {
	return Config{
		Nodes: []NodeConfig{
			{Partition: market.PartitionNewYork, Host: "127.0.0.1", Port: 8001},
			{Partition: market.PartitionLondon, Host: "127.0.0.1", Port: 8002},
			{Partition: market.PartitionTokyo, Host: "127.0.0.1", Port: 8003},
		},
		ReplyTimeoutMS: 2000,
		SpoolSize:      1024,
		Kafka: KafkaConfig{
			Enabled: false,
			Topic:   "market-audit",
		},
	}
}

// Load reads a JSON config file over the defaults and validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks struct constraints plus the one startup-fatal rule:
// every configured partition key must be a known market partition.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	seen := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if _, ok := market.PartitionName(n.Partition); !ok {
			return fmt.Errorf("%w: %q", market.ErrUnknownPartition, n.Partition)
		}
		if seen[n.Partition] {
			return fmt.Errorf("duplicate partition %q in config", n.Partition)
		}
		seen[n.Partition] = true
	}
	return nil
}

// Peers returns the partition → address book the UDP channel uses.
func (c Config) Peers() map[string]string {
	peers := make(map[string]string, len(c.Nodes))
	for _, n := range c.Nodes {
		peers[n.Partition] = n.Addr()
	}
	return peers
}

// ReplyTimeout returns the remote round-trip bound.
func (c Config) ReplyTimeout() time.Duration {
	return time.Duration(c.ReplyTimeoutMS) * time.Millisecond
}
