package main

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the connection parameters shared by every subcommand.
type Config struct {
	Transport string `mapstructure:"transport"`
	Device    string `mapstructure:"device"`
	Baudrate  int    `mapstructure:"baudrate"`
	Parity    string `mapstructure:"parity"`
	Address   string `mapstructure:"address"`
	SlaveID   int    `mapstructure:"slave_id"`
	Debug     bool   `mapstructure:"debug"`
}

func defaultConfig() *Config {
	return &Config{
		Transport: "rtu",
		Baudrate:  9600,
		Parity:    "NONE",
		SlaveID:   1,
	}
}

// loadConfig reads the explicit cfgFile path when one is given, and
// otherwise searches for modbusctl.{yaml,json,...} in the working directory
// and then /etc/modbusctl/. MODBUSCTL_*-prefixed environment variables
// override values from the file.
func loadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("modbusctl")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/modbusctl/")
	}
	v.SetEnvPrefix("MODBUSCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"transport", "device", "baudrate", "parity", "address", "slave_id", "debug"} {
		_ = v.BindEnv(key)
	}

	cfg := defaultConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
