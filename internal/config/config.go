package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jt828/promtext/pkg/apperror"
	"github.com/spf13/viper"
)

const EnvPrefix = "PROMTEXT"

type Config struct {
	ServiceName     string        `mapstructure:"service_name"`
	HTTPAddr        string        `mapstructure:"http_addr"`
	GRPCAddr        string        `mapstructure:"grpc_addr"`
	MetricsPath     string        `mapstructure:"metrics_path"`
	SelfMetricsPath string        `mapstructure:"self_metrics_path"`
	Prefix          string        `mapstructure:"prefix"`
	OTLPEndpoint    string        `mapstructure:"otlp_endpoint"`
	LogLevel        string        `mapstructure:"log_level"`
	WorkloadPeriod  time.Duration `mapstructure:"workload_period"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "promtext-exporter")
	v.SetDefault("http_addr", ":9100")
	v.SetDefault("grpc_addr", ":50051")
	v.SetDefault("metrics_path", "/metrics")
	v.SetDefault("self_metrics_path", "/internal/metrics")
	v.SetDefault("prefix", "ledger")
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("workload_period", "250ms")
}

// Load reads PROMTEXT_* environment variables on top of the YAML file at
// path. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("metrics_path %q must start with /", c.MetricsPath))
	}
	if !strings.HasPrefix(c.SelfMetricsPath, "/") {
		errs = append(errs, fmt.Errorf("self_metrics_path %q must start with /", c.SelfMetricsPath))
	}
	if c.MetricsPath == c.SelfMetricsPath {
		errs = append(errs, errors.New("metrics_path and self_metrics_path must differ"))
	}
	if c.WorkloadPeriod < 0 {
		errs = append(errs, fmt.Errorf("workload_period %s must not be negative", c.WorkloadPeriod))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w: %w", apperror.ErrInvalidArgument, errors.Join(errs...))
	}
	return nil
}
