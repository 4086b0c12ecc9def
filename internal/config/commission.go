package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CommissionConfig holds the per-provider commission rates and the flat
// platform rate, all expressed in basis points of the gross amount.
type CommissionConfig struct {
	ProviderRatesBp map[string]int64 `mapstructure:"providerRatesBp"`
	PlatformRateBp  int64            `mapstructure:"platformRateBp"`
}

func DefaultCommissionConfig() CommissionConfig {
	return CommissionConfig{
		ProviderRatesBp: map[string]int64{
			"orange_money": 200,
			"mtn_money":    250,
			"wave":         100,
		},
		PlatformRateBp: 50,
	}
}

// CommissionHolder serves the current commission rates and hot-reloads them
// when the config file changes on disk.
type CommissionHolder struct {
	current atomic.Value // holds CommissionConfig
}

func NewCommissionHolder() (*CommissionHolder, error) {
	v := viper.New()

	v.SetConfigName("commission")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/sahelpay/config")
	v.AddConfigPath("/etc/sahelpay")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SAHELPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultCommissionConfig()
		v.SetDefault("commission.providerRatesBp", defaults.ProviderRatesBp)
		v.SetDefault("commission.platformRateBp", defaults.PlatformRateBp)
	}

	var cfg CommissionConfig
	if err := v.UnmarshalKey("commission", &cfg); err != nil {
		return nil, err
	}
	if err := validateCommissionConfig(cfg); err != nil {
		return nil, err
	}

	holder := &CommissionHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CommissionConfig
		if err := v.UnmarshalKey("commission", &updated); err != nil {
			log.Printf("[commission-config] reload failed: %v", err)
			return
		}
		if err := validateCommissionConfig(updated); err != nil {
			log.Printf("[commission-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[commission-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticCommissionHolder returns a holder pinned to cfg, without file
// watching. Used by tests and by callers that manage rates themselves.
func NewStaticCommissionHolder(cfg CommissionConfig) *CommissionHolder {
	holder := &CommissionHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *CommissionHolder) Get() CommissionConfig {
	return h.current.Load().(CommissionConfig)
}

func validateCommissionConfig(cfg CommissionConfig) error {
	if len(cfg.ProviderRatesBp) == 0 {
		return errors.New("commission.providerRatesBp cannot be empty")
	}
	if cfg.PlatformRateBp < 0 {
		return errors.New("commission.platformRateBp cannot be negative")
	}
	for provider, rate := range cfg.ProviderRatesBp {
		if strings.TrimSpace(provider) == "" {
			return errors.New("commission.providerRatesBp contains an empty provider")
		}
		if rate < 0 {
			return errors.New("commission.providerRatesBp cannot contain negative rates")
		}
	}
	return nil
}
