// Copyright (c) 2025 Kevin Tenolli
// SPDX-License-Identifier: MIT

// Command stafgen drives the staf compression engine over a matrix
// read from disk or generated at random, and prints the resulting
// two-level CSR's shape along with the primary/suffix arrays it asked
// for with -verbose.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/kvtenolli/staf"
)

var (
	rowsStreamed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "stafgen",
		Name:      "rows_total",
		Help:      "Rows in the last matrix compressed.",
	})
	columnsStreamed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "stafgen",
		Name:      "columns_total",
		Help:      "Columns in the last matrix compressed.",
	})
	suffixPatternsEmitted = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "stafgen",
		Name:      "suffix_patterns_total",
		Help:      "Shared suffix patterns emitted by the last compression run.",
	})
	primaryNonzeros = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "stafgen",
		Name:      "primary_nonzeros_total",
		Help:      "Non-zero entries left in the primary CSR after suffix extraction.",
	})
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	app := &cli.App{
		Name:  "stafgen",
		Usage: "run the sparsity-pattern compression engine over a binary matrix",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Usage: "path to a whitespace-separated dense 0/1 matrix; random matrix if omitted"},
			&cli.IntFlag{Name: "rows", Value: 20, Usage: "rows for a generated matrix"},
			&cli.IntFlag{Name: "cols", Value: 15, Usage: "columns for a generated matrix"},
			&cli.Float64Flag{Name: "density", Value: 0.3, Usage: "probability a cell is non-zero in a generated matrix"},
			&cli.Uint64Flag{Name: "seed", Value: 42, Usage: "seed for a generated matrix"},
			&cli.IntFlag{Name: "lambda", Value: 2, Usage: "cost of a new trie node relative to a new row, in the trial score"},
			&cli.IntFlag{Name: "max-tries", Value: 4, Usage: "maximum number of suffix tries in the forest"},
			&cli.BoolFlag{Name: "verbose", Usage: "print the full primary and suffix arrays"},
			&cli.BoolFlag{Name: "debug", Usage: "print every suffix trie as a tree before extracting patterns"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "if set, serve Prometheus metrics on this address and block"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("stafgen failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	dense, err := loadOrGenerate(c)
	if err != nil {
		return fmt.Errorf("load matrix: %w", err)
	}

	nRows := len(dense)
	colPtr, rowInd, nCols := staf.FromDenseRows(dense)

	lambda := c.Int("lambda")
	maxTries := c.Int("max-tries")

	slog.Info("compressing matrix", "rows", nRows, "cols", nCols, "nnz", len(rowInd), "lambda", lambda, "max_tries", maxTries)

	var csr *staf.BinaryCSR
	if c.Bool("debug") {
		csr, err = compressVerbose(colPtr, rowInd, nRows, nCols, lambda, maxTries)
	} else {
		csr, err = staf.Compress(colPtr, rowInd, nil, nRows, nCols, lambda, maxTries)
	}
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	rowsStreamed.Set(float64(nRows))
	columnsStreamed.Set(float64(nCols))
	suffixPatternsEmitted.Set(float64(len(csr.SuffixRowPtr) - 1))
	primaryNonzeros.Set(float64(len(csr.ColIndices)))

	fmt.Println(csr.String())
	if c.Bool("verbose") {
		fmt.Printf("row_ptr:        %v\n", csr.RowPtr)
		fmt.Printf("col_indices:    %v\n", csr.ColIndices)
		fmt.Printf("suffix_row_ptr: %v\n", csr.SuffixRowPtr)
		fmt.Printf("suffix_cols:    %v\n", csr.SuffixCols)
		fmt.Printf("map_suffix_ptr: %v\n", csr.MapSuffixPtr)
		fmt.Printf("map_row_idx:    %v\n", csr.MapRowIdx)
	}

	if addr := c.String("metrics-addr"); addr != "" {
		slog.Info("serving metrics", "addr", addr)
		http.Handle("/metrics", promhttp.Handler())
		return http.ListenAndServe(addr, nil)
	}
	return nil
}

// compressVerbose runs the forest construction and CSR emission steps
// of staf.Compress, without its up-front CSC validation, and pauses to
// print every trie's shape right after the forest is built and before
// patterns are extracted into a CSR.
func compressVerbose(colPtr, rowInd []int32, nRows, nCols, lambda, maxTries int) (csr *staf.BinaryCSR, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	forest, err := staf.NewSuffixForest(maxTries, lambda)
	if err != nil {
		return nil, err
	}
	if err := forest.CreateForest(colPtr, rowInd, nCols); err != nil {
		return nil, err
	}
	fmt.Printf("forest built with %d tries:\n%s", forest.Size(), forest.String())
	return forest.BuildCSR(nRows)
}

// loadOrGenerate reads a dense matrix from the -input file if given,
// one row per line with space-separated 0/1 tokens, or else generates
// a random one from -rows/-cols/-density/-seed.
func loadOrGenerate(c *cli.Context) ([][]float32, error) {
	if path := c.String("input"); path != "" {
		return readDenseFile(path)
	}

	rng := rand.New(rand.NewPCG(c.Uint64("seed"), c.Uint64("seed")))
	nRows, nCols := c.Int("rows"), c.Int("cols")
	density := c.Float64("density")

	dense := make([][]float32, nRows)
	for r := range dense {
		dense[r] = make([]float32, nCols)
		for col := range dense[r] {
			if rng.Float64() < density {
				dense[r][col] = 1
			}
		}
	}
	return dense, nil
}

func readDenseFile(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dense [][]float32
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		row := make([]float32, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("parse cell %d on line %d: %w", i, len(dense)+1, err)
			}
			row[i] = float32(v)
		}
		dense = append(dense, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return dense, nil
}
