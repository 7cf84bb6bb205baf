package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlz-automation/modbus"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Probe every slave id on the bus and report the baud rate each answered at",
	RunE: func(cmd *cobra.Command, args []string) error {
		master, err := newMaster()
		if err != nil {
			return err
		}
		defer master.Close()

		found, err := master.ScanForDevices(modbus.DefaultBaudRates)
		if err != nil {
			logger.Error("scan failed", zap.Error(err))
			return err
		}

		for slaveID, baud := range found {
			fmt.Printf("slave %d: %d baud\n", slaveID, baud)
		}
		return nil
	},
}
