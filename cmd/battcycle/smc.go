package main

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battcycle/battcycle/pkg/smc"
	"github.com/battcycle/battcycle/pkg/types"
)

// NewSMCCommand .
func NewSMCCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "smc",
		Short:   "Read and write raw SMC keys",
		GroupID: gAdvanced,
		Long: `Read and write raw SMC keys.

Keys are four characters, e.g. CH0B. Values are hex strings whose decoded
length must match the key's size exactly. Writing requires root.`,
	}

	cmd.AddCommand(
		newSMCReadCommand(),
		newSMCWriteCommand(),
		newSMCListCommand(),
	)

	return cmd
}

func newSMCReadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read KEY",
		Short: "Read an SMC key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := newKeyReadWriter(smcBackend)
			if err != nil {
				return err
			}

			v, err := kv.Read(args[0])
			if err != nil {
				return err
			}

			sv := types.NewSMCValue(v)
			cmd.Printf("%s [%s] %d bytes: %s\n", bold("%s", sv.Key), sv.Type, sv.Size, bold("%s", sv.Hex))
			return nil
		},
	}
}

func newSMCWriteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "write KEY HEX",
		Short: "Write a hex value to an SMC key",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			kv, err := newKeyReadWriter(smcBackend)
			if err != nil {
				return err
			}

			if err := kv.WriteKey(args[0], args[1]); err != nil {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"key": args[0],
				"val": args[1],
			}).Info("smc key written")
			return nil
		},
	}
}

var errListNative = errors.New("listing keys requires --smc-backend=native")

func newSMCListCommand() *cobra.Command {
	limit := 0

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every SMC key with its value",
		Long: `List every SMC key with its value, in index order.

Only the native backend can enumerate keys.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if smcBackend != backendNative {
				return errListNative
			}

			ex := smc.Default()
			count, err := ex.KeyCount()
			if err != nil {
				return err
			}
			if limit > 0 && uint32(limit) < count {
				count = uint32(limit)
			}

			for i := uint32(0); i < count; i++ {
				key, err := ex.KeyAt(i)
				if err != nil {
					logrus.WithError(err).WithField("index", i).Warn("failed to read key name")
					continue
				}
				v, err := ex.Read(key)
				if err != nil {
					cmd.Printf("%s  %s\n", key, "unreadable")
					continue
				}
				cmd.Println(v.String())
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "list at most this many keys (0 lists all)")

	return cmd
}
