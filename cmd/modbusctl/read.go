package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlz-automation/modbus"
)

var (
	readRegisterType string
	readStart        uint16
	readCount        uint16
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read a contiguous span of registers from a slave",
	RunE: func(cmd *cobra.Command, args []string) error {
		registerType, err := parseRegisterType(readRegisterType)
		if err != nil {
			return err
		}

		master, err := newMaster()
		if err != nil {
			return err
		}
		defer master.Close()

		values, err := master.Read(uint8(cfg.SlaveID), registerType, readStart, readCount)
		if err != nil {
			logger.Error("read failed", zap.Error(err))
			return err
		}

		for i, v := range values {
			fmt.Printf("%d: 0x%04X (%d)\n", int(readStart)+i, v, v)
		}
		return nil
	},
}

func init() {
	readCmd.Flags().StringVar(&readRegisterType, "type", "holding", "register type: coil, discrete, input, holding")
	readCmd.Flags().Uint16Var(&readStart, "start", 0, "starting register address")
	readCmd.Flags().Uint16Var(&readCount, "count", 1, "number of registers to read")
}

func parseRegisterType(s string) (modbus.RegisterType, error) {
	switch s {
	case "coil":
		return modbus.Coil, nil
	case "discrete":
		return modbus.DiscreteInput, nil
	case "input":
		return modbus.AnalogInput, nil
	case "holding":
		return modbus.Holding, nil
	default:
		return 0, fmt.Errorf("unknown register type %q", s)
	}
}
