package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	writeRegisterType string
	writeStart        uint16
	writeValues       string
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a comma-separated list of register values to a slave",
	RunE: func(cmd *cobra.Command, args []string) error {
		registerType, err := parseRegisterType(writeRegisterType)
		if err != nil {
			return err
		}

		values, err := parseValues(writeValues)
		if err != nil {
			return err
		}

		master, err := newMaster()
		if err != nil {
			return err
		}
		defer master.Close()

		if err := master.Write(uint8(cfg.SlaveID), registerType, writeStart, values); err != nil {
			logger.Error("write failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	writeCmd.Flags().StringVar(&writeRegisterType, "type", "holding", "register type: coil, holding")
	writeCmd.Flags().Uint16Var(&writeStart, "start", 0, "starting register address")
	writeCmd.Flags().StringVar(&writeValues, "values", "", "comma-separated register values, e.g. 1,2,3")
}

func parseValues(s string) ([]uint16, error) {
	fields := strings.Split(s, ",")
	values := make([]uint16, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.ParseUint(f, 10, 16)
		if err != nil {
			return nil, err
		}
		values = append(values, uint16(n))
	}
	return values, nil
}
