// Command modbusctl is a small diagnostic client over the modbus driver:
// read and write register spans, and scan a bus for responding slaves.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlz-automation/modbus"
)

var (
	cfgFile string
	logger  *zap.Logger
	cfg     *Config
)

var rootCmd = &cobra.Command{
	Use:   "modbusctl",
	Short: "Diagnostic client for the modbus register driver",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		cfg, err = loadConfig(cfgFile)
		if err != nil {
			logger.Warn("failed to load config, using defaults", zap.Error(err))
			cfg = defaultConfig()
		}

		modbus.InfoLogFunc = func(format string, v ...any) { logger.Sugar().Infof(format, v...) }
		if cfg.Debug {
			modbus.DebugLogFunc = func(format string, v ...any) { logger.Sugar().Debugf(format, v...) }
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger() (*zap.Logger, error) {
	if cfg != nil && cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newMaster() (*modbus.Master, error) {
	var device modbus.StreamDevice
	isTCP := cfg.Transport == "tcp"
	if isTCP {
		if cfg.Address == "" {
			return nil, fmt.Errorf("transport tcp requires an address")
		}
		device = modbus.NewTCPStream(cfg.Address)
	} else {
		if cfg.Device == "" {
			return nil, fmt.Errorf("transport rtu requires a device path")
		}
		var parity modbus.Parity
		if err := parity.UnmarshalText([]byte(cfg.Parity)); err != nil {
			return nil, err
		}
		device = modbus.NewSerialPort(cfg.Device, cfg.Baudrate, parity)
	}
	return modbus.NewMaster(device, isTCP), nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.AddCommand(readCmd, writeCmd, scanCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
