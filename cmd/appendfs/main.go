package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/outofforest/appendfs"
)

// Exit codes of the front-ends.
const (
	codeIO    = 1
	codeMount = 2
	codeUsage = 3
)

// exitError carries the process exit code together with the cause.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	return e.err.Error()
}

func (e exitError) Unwrap() error {
	return e.err
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		os.Exit(codeIO)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))

		var coded exitError
		if errors.As(err, &coded) {
			os.Exit(coded.code)
		}
		// Anything escaping without a code is a usage problem reported by the
		// flag layer.
		os.Exit(codeUsage)
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	cfg := &deviceConfig{}

	rootCmd := &cobra.Command{
		Use:           "appendfs",
		Short:         "Append-only ring-buffer filesystem for block devices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.device, "device", "", "path to the block device or backing file")
	rootCmd.PersistentFlags().Uint64Var(&cfg.beginBlock, "begin-block", 0, "first block of the region")
	rootCmd.PersistentFlags().Uint64Var(&cfg.endBlock, "end-block", 0, "block after the last one of the region")
	rootCmd.PersistentFlags().Int64Var(&cfg.blockSize, "block-size", appendfs.DefaultBlockSize, "block size in bytes")
	for _, flag := range []string{"device", "end-block"} {
		if err := rootCmd.MarkPersistentFlagRequired(flag); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(newFormatCmd(cfg, logger))
	rootCmd.AddCommand(newWriterCmd(cfg, logger))
	rootCmd.AddCommand(newReaderCmd(cfg, logger))
	return rootCmd
}
