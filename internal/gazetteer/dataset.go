package gazetteer

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/regions.yaml
var embeddedDataset []byte

// Dataset dạng lồng nhau của file YAML: provinces -> cities -> districts
type Dataset struct {
	Version   string  `yaml:"version"`
	Provinces []Entry `yaml:"provinces"`
}

// Entry một region trong file dataset
type Entry struct {
	Code      string   `yaml:"code"`
	Name      string   `yaml:"name"`
	Aliases   []string `yaml:"aliases,omitempty,flow"`
	Latitude  *float64 `yaml:"lat,omitempty"`
	Longitude *float64 `yaml:"lng,omitempty"`
	Cities    []Entry  `yaml:"cities,omitempty"`
	Districts []Entry  `yaml:"districts,omitempty"`
}

// DecodeDataset đọc dataset YAML
func DecodeDataset(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: dataset is empty", ErrLoadFailure)
		}
		return nil, fmt.Errorf("%w: decode dataset: %v", ErrLoadFailure, err)
	}
	return &ds, nil
}

// EncodeDataset ghi dataset ra YAML
func EncodeDataset(w io.Writer, ds *Dataset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return enc.Close()
}

// Load đọc dataset từ r và dựng Gazetteer
func Load(r io.Reader, opts ...Option) (*Gazetteer, error) {
	ds, err := DecodeDataset(r)
	if err != nil {
		return nil, err
	}
	return New(ds, opts...)
}

// LoadFile đọc dataset từ file YAML trên đĩa
func LoadFile(path string, opts ...Option) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrLoadFailure, path, err)
	}
	defer f.Close()
	return Load(f, opts...)
}

// Default dựng Gazetteer từ dataset nhúng trong binary
func Default(opts ...Option) (*Gazetteer, error) {
	return Load(bytes.NewReader(embeddedDataset), opts...)
}
