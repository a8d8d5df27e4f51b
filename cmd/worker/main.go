package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cn-address-resolver/app/config"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/cn-address-resolver/internal/resolver"
	"github.com/cn-address-resolver/internal/table"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain trả về exit code thay vì gọi os.Exit để các defer (logger.Sync) kịp chạy
func realMain(args []string) int {
	flags := pflag.NewFlagSet("worker", pflag.ContinueOnError)
	in := flags.String("in", "-", "CSV đầu vào (có header), - là stdin")
	out := flags.String("out", "-", "CSV đầu ra, - là stdout")
	column := flags.String("column", "address", "tên cột chứa địa chỉ")
	configPath := flags.String("config", "", "file cấu hình YAML")
	flags.Bool("pos", false, "thêm các cột *_pos (span theo rune)")
	flags.Bool("fill-parents", false, "điền cấp trên còn thiếu từ cấp sâu nhất")
	flags.Int("workers", 0, "số worker song song (0 = GOMAXPROCS)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	v := config.New()
	for key, name := range map[string]string{
		"resolver.position_sensitive": "pos",
		"resolver.fill_parents":       "fill-parents",
		"resolver.workers":            "workers",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	cfg, err := config.LoadWith(v, *configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *in, *out, *column, logger); err != nil {
		logger.Error("Worker failed", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, in, out, column string, logger *zap.Logger) error {
	opts := []gazetteer.Option{
		gazetteer.WithLogger(logger),
		gazetteer.WithDerivedShortNames(cfg.Gazetteer.DeriveShortNames),
	}
	var (
		gaz *gazetteer.Gazetteer
		err error
	)
	if cfg.Gazetteer.Path != "" {
		gaz, err = gazetteer.LoadFile(cfg.Gazetteer.Path, opts...)
	} else {
		gaz, err = gazetteer.Default(opts...)
	}
	if err != nil {
		return err
	}

	src, err := openInput(in)
	if err != nil {
		return err
	}
	defer src.Close()

	frame, err := table.ReadCSV(src)
	if err != nil {
		return err
	}

	exec := resolver.NewExecutor(
		resolver.New(gaz, resolver.Options{FillParents: cfg.Resolver.FillParents}),
		cfg.Resolver.Workers,
		cfg.Resolver.ChunkSize,
	)

	start := time.Now()
	result, err := table.TransformColumn(ctx, exec, frame, column, cfg.Resolver.PositionSensitive)
	if err != nil {
		return err
	}

	dst, err := openOutput(out)
	if err != nil {
		return err
	}
	if err := table.WriteCSV(dst, result); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	logger.Info("Table transformed",
		zap.Int("rows", result.Len()),
		zap.String("column", column),
		zap.String("gazetteer_version", gaz.Version()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
