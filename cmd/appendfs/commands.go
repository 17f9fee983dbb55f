package main

import (
	"bufio"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/outofforest/appendfs"
	"github.com/outofforest/appendfs/blocks"
	"github.com/outofforest/appendfs/persistence"
	"github.com/outofforest/appendfs/pkg/filedev"
)

type deviceConfig struct {
	device     string
	beginBlock uint64
	endBlock   uint64
	blockSize  int64
}

func (cfg *deviceConfig) open(flag int, logger *zap.Logger) (appendfs.Config, *os.File, error) {
	file, err := os.OpenFile(cfg.device, flag, 0o644)
	if err != nil {
		return appendfs.Config{}, nil, exitError{code: codeIO, err: errors.WithStack(err)}
	}

	store, err := persistence.OpenStore(filedev.New(file), cfg.blockSize)
	if err != nil {
		_ = file.Close()
		return appendfs.Config{}, nil, exitError{code: codeMount, err: err}
	}

	return appendfs.Config{
		Store:      store,
		BeginBlock: blocks.BlockAddress(cfg.beginBlock),
		EndBlock:   blocks.BlockAddress(cfg.endBlock),
		Logger:     logger,
	}, file, nil
}

func newFormatCmd(cfg *deviceConfig, logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Erase the region and write the initial sentinel block",
		RunE: func(cmd *cobra.Command, args []string) error {
			fsCfg, file, err := cfg.open(os.O_RDWR, logger)
			if err != nil {
				return err
			}
			defer func() {
				_ = file.Close()
			}()

			if err := appendfs.Format(fsCfg); err != nil {
				return exitError{code: codeIO, err: err}
			}
			logger.Info("region formatted",
				zap.Uint64("beginBlock", cfg.beginBlock),
				zap.Uint64("endBlock", cfg.endBlock))
			return nil
		},
	}
}

func newWriterCmd(cfg *deviceConfig, logger *zap.Logger) *cobra.Command {
	var formatOnly bool

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Stream stdin into the region, one block per payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			fsCfg, file, err := cfg.open(os.O_RDWR, logger)
			if err != nil {
				return err
			}
			defer func() {
				_ = file.Close()
			}()

			if formatOnly {
				if err := appendfs.Format(fsCfg); err != nil {
					return exitError{code: codeIO, err: err}
				}
				return nil
			}

			fs, err := appendfs.Mount(fsCfg)
			if err != nil {
				return exitError{code: codeMount, err: err}
			}
			logger.Info("filesystem mounted",
				zap.Uint64("position", uint64(fs.NextPosition())),
				zap.Uint64("id", uint64(fs.NextID())))

			return writeStream(fs, os.Stdin, logger)
		},
	}
	cmd.Flags().BoolVar(&formatOnly, "format-only", false, "format the region and exit without writing")
	return cmd
}

// writeStream commits one block per payload-sized chunk of in, padding the
// final partial chunk with zeros.
func writeStream(fs *appendfs.Filesystem, in io.Reader, logger *zap.Logger) error {
	rd := bufio.NewReaderSize(in, fs.PayloadSize())
	digest := xxhash.New()
	payload := fs.BorrowPayload()

	var written uint64
	for {
		n, err := io.ReadFull(rd, payload)
		if n > 0 {
			for i := n; i < len(payload); i++ {
				payload[i] = 0
			}
			_, _ = digest.Write(payload[:n])
			if err := fs.Commit(); err != nil {
				return exitError{code: codeIO, err: err}
			}
			written++
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			logger.Info("finished writing",
				zap.Uint64("blocks", written),
				zap.Uint64("streamDigest", digest.Sum64()))
			return nil
		default:
			return exitError{code: codeIO, err: errors.WithStack(err)}
		}
	}
}

func newReaderCmd(cfg *deviceConfig, logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "read",
		Short: "Stream the region's payloads to stdout, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			fsCfg, file, err := cfg.open(os.O_RDONLY, logger)
			if err != nil {
				return err
			}
			defer func() {
				_ = file.Close()
			}()

			fs, err := appendfs.Mount(fsCfg)
			if err != nil {
				return exitError{code: codeMount, err: err}
			}
			logger.Info("filesystem mounted",
				zap.Uint64("position", uint64(fs.NextPosition())),
				zap.Uint64("id", uint64(fs.NextID())))

			return readStream(fs, os.Stdout, logger)
		},
	}
}

func readStream(fs *appendfs.Filesystem, out io.Writer, logger *zap.Logger) error {
	wr := bufio.NewWriterSize(out, fs.PayloadSize())
	digest := xxhash.New()
	buf := make([]byte, fs.BlockSize())
	reader := fs.NewReader()

	var read uint64
	for {
		_, payload, err := reader.Next(buf)
		if err != nil {
			return exitError{code: codeIO, err: err}
		}
		if payload == nil {
			break
		}

		_, _ = digest.Write(payload)
		if _, err := wr.Write(payload); err != nil {
			return exitError{code: codeIO, err: errors.WithStack(err)}
		}
		read++
	}

	if err := wr.Flush(); err != nil {
		return exitError{code: codeIO, err: errors.WithStack(err)}
	}
	logger.Info("finished reading",
		zap.Uint64("blocks", read),
		zap.Uint64("streamDigest", digest.Sum64()))
	return nil
}
