// Package config loads a benchmark run's configuration from a JSON
// document. The original (original_source/src/main.py) reads an INI file
// via configparser with ExtendedInterpolation and five sections:
// datasets, coarseQuantizer, productQuantizer, ivfadc, and misc. No example
// repo in the corpus imports a third-party config or INI library
// (viper/ini/etc. do not appear anywhere), so this loader uses
// encoding/json from the standard library rather than inventing a
// dependency the rest of the ecosystem sample never reaches for — see
// DESIGN.md for the stdlib justification. The field groups mirror the
// five original sections one-for-one.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lborges/ivfadc/internal/errs"
)

// Datasets names the TEXMEX files a benchmark run reads.
type Datasets struct {
	DatasetName string `json:"datasetName"`
	TrainSet    string `json:"trainSet"`
	BaseSet     string `json:"baseSet"`
	QuerySet    string `json:"querySet"`
	GroundTruth string `json:"groundTruth"`
}

// CoarseQuantizer mirrors the original's [coarseQuantizer] section.
type CoarseQuantizer struct {
	NumberCentroids int   `json:"numberCentroids"`
	MaxIterations   int   `json:"maxIterations"`
	Seed            int64 `json:"seed"`
}

// ProductQuantizer mirrors the original's [productQuantizer] section.
type ProductQuantizer struct {
	NumberSubquantizers int   `json:"numberSubquantizers"`
	NumberCentroids     int   `json:"numberCentroids"`
	MaxIterations       int   `json:"maxIterations"`
	Seed                int64 `json:"seed"`
}

// IVFADC mirrors the original's [ivfadc] section.
type IVFADC struct {
	CoarseNeighborsLookup int `json:"coarseNeighborsLookup"`
	NearestNeighbors      int `json:"nearestNeighbors"`
}

// Misc mirrors the original's [misc] section.
type Misc struct {
	RecallRs []int  `json:"recallRs"`
	LogLevel string `json:"logLevel"`
}

// Config is the fully parsed benchmark configuration document.
type Config struct {
	Datasets         Datasets         `json:"datasets"`
	CoarseQuantizer  CoarseQuantizer  `json:"coarseQuantizer"`
	ProductQuantizer ProductQuantizer `json:"productQuantizer"`
	IVFADC           IVFADC           `json:"ivfadc"`
	Misc             Misc             `json:"misc"`
}

// Load reads and parses the JSON configuration document at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", path, errs.ErrIoError)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a configuration document from r.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", errs.ErrMalformedFile)
	}
	if cfg.CoarseQuantizer.NumberCentroids <= 0 {
		return nil, fmt.Errorf("config: coarseQuantizer.numberCentroids must be positive: %w", errs.ErrInvalidParam)
	}
	if cfg.ProductQuantizer.NumberSubquantizers <= 0 {
		return nil, fmt.Errorf("config: productQuantizer.numberSubquantizers must be positive: %w", errs.ErrInvalidParam)
	}
	if cfg.IVFADC.CoarseNeighborsLookup < 1 || cfg.IVFADC.CoarseNeighborsLookup > cfg.CoarseQuantizer.NumberCentroids {
		return nil, fmt.Errorf("config: ivfadc.coarseNeighborsLookup outside [1,numberCentroids]: %w", errs.ErrInvalidParam)
	}
	return &cfg, nil
}
