// Command convert-gazetteer chuyển file adcode phẳng (adcode,name,longitude,latitude)
// sang dataset YAML lồng nhau mà gazetteer nạp được.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	in := pflag.String("in", "-", "CSV adcode đầu vào, - là stdin")
	out := pflag.String("out", "-", "file YAML đầu ra, - là stdout")
	version := pflag.String("version", time.Now().Format("2006.01"), "phiên bản dataset")
	validate := pflag.Bool("validate", true, "dựng thử gazetteer từ dataset trước khi ghi")
	pflag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := run(*in, *out, *version, *validate, logger); err != nil {
		logger.Fatal("Convert failed", zap.Error(err))
	}
}

func run(in, out, version string, validate bool, logger *zap.Logger) error {
	var src io.Reader = os.Stdin
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	ds, stats, err := convert(src, version)
	if err != nil {
		return err
	}
	logger.Info("Dataset converted",
		zap.Int("rows", stats.Rows),
		zap.Int("provinces", stats.Provinces),
		zap.Int("cities", stats.Cities),
		zap.Int("districts", stats.Districts),
		zap.Int("below_district", stats.BelowDistrict),
		zap.Int("orphans", stats.Orphans),
	)

	if validate {
		g, err := gazetteer.New(ds, gazetteer.WithLogger(logger), gazetteer.WithDerivedShortNames(true))
		if err != nil {
			return fmt.Errorf("dataset không hợp lệ: %w", err)
		}
		logger.Info("Dataset validated", zap.String("version", g.Version()), zap.Int("regions", g.Len()))
	}

	if out == "-" {
		return gazetteer.EncodeDataset(os.Stdout, ds)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := gazetteer.EncodeDataset(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
