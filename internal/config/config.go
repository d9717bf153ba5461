// Package config loads the flat key=value text files described in §6 of
// the backtest core's external interface: lines beginning with '#' are
// comments, blank lines are ignored, and the last occurrence of a key
// wins. This grammar has no structured-format source (YAML/JSON/env) to
// lean on, so it is parsed directly with bufio.Scanner rather than
// spf13/viper.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// File is a parsed key=value file: the last occurrence of a key wins.
type File struct {
	values map[string]string
}

// Load reads and parses a key=value file from disk.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a key=value stream. Malformed lines (no '=') are skipped.
func Parse(r io.Reader) (*File, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: reading: %w", err)
	}
	return &File{values: values}, nil
}

// String returns a key's raw value, or def if absent.
func (f *File) String(key, def string) string {
	if v, ok := f.values[key]; ok {
		return v
	}
	return def
}

// Float64 parses a key's value as a float64, or returns def if absent or
// unparsable.
func (f *File) Float64(key string, def float64) float64 {
	v, ok := f.values[key]
	if !ok {
		return def
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return parsed
}

// Uint64 parses a key's value as a uint64, or returns def if absent or
// unparsable.
func (f *File) Uint64(key string, def uint64) uint64 {
	v, ok := f.values[key]
	if !ok {
		return def
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

// Int parses a key's value as an int, or returns def if absent or
// unparsable.
func (f *File) Int(key string, def int) int {
	v, ok := f.values[key]
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}

// Bool parses a "0"/"1" key's value as a bool, or returns def if absent.
func (f *File) Bool(key string, def bool) bool {
	v, ok := f.values[key]
	if !ok {
		return def
	}
	return v == "1"
}
