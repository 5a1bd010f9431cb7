// Package config reads the analysis steering file and the tool settings.
//
// The steering file is plain text, one "Key: value" pair per line:
//
//	# comment
//	Centrality: 90_100
//	Centrality: 80_90
//	CutCombination: 2.5<Jpsi_Y&&Jpsi_Y<4
//	FitType: signal=cb|bkgr=exp|range=2900;3300
//	MotherLeaf: Jpsi
//
// Blank lines and lines starting with '#' are skipped, whitespace inside a
// line is dropped, and a key given several times accumulates its values in
// order. Keys absent from the file take the "#" sentinel.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Default is the value of a key missing from the steering file.
const Default = "#"

// Known steering keys.
const (
	Centrality     = "Centrality"
	CutCombination = "CutCombination"
	FitType        = "FitType"
	MotherLeaf     = "MotherLeaf"
	MuplusLeaf     = "MuplusLeaf"
	MuminusLeaf    = "MuminusLeaf"
	DaughterLeafs  = "DaughterLeafs"
	ResultFilePath = "ResultFilePath"
)

var Keys = []string{
	Centrality,
	CutCombination,
	FitType,
	MotherLeaf,
	MuplusLeaf,
	MuminusLeaf,
	DaughterLeafs,
	ResultFilePath,
}

// Config holds the values of the steering keys.
type Config struct {
	entries map[string][]string
}

// ReadFile reads the steering file at path.
func ReadFile(path string, logger *zap.Logger) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: could not open steering file: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f, logger.With(zap.String("file", path)))
	if err != nil {
		return nil, fmt.Errorf("config: could not read %q: %w", path, err)
	}
	return cfg, nil
}

// Read parses a steering file. Malformed lines and unknown keys are
// logged and skipped.
func Read(r io.Reader, logger *zap.Logger) (*Config, error) {
	found := make(map[string][]string)

	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		logger.Debug("reading line", zap.Int("line", lineno), zap.String("text", line))

		key, value, err := DecodeLine(line)
		if err != nil {
			logger.Warn("skipping malformed line", zap.Int("line", lineno), zap.Error(err))
			continue
		}
		found[key] = append(found[key], value)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	cfg := &Config{entries: make(map[string][]string, len(Keys))}
	for _, key := range Keys {
		values, ok := found[key]
		if !ok {
			logger.Warn("no entries for key, using default", zap.String("key", key), zap.String("default", Default))
			values = []string{Default}
		}
		cfg.entries[key] = values
		delete(found, key)
	}
	for key := range found {
		logger.Warn("ignoring unknown key", zap.String("key", key))
	}
	return cfg, nil
}

// DecodeLine splits a "key:value" line. All whitespace is removed first.
func DecodeLine(line string) (key, value string, err error) {
	compact := strings.Join(strings.Fields(line), "")
	parts := strings.Split(compact, ":")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("config: format of %q is not correct, should be \"key:value\"", line)
	}
	return parts[0], parts[1], nil
}

// Get returns the values of key, or the default sentinel when key is not a
// steering key.
func (c *Config) Get(key string) []string {
	values, ok := c.entries[key]
	if !ok {
		return []string{Default}
	}
	return append([]string(nil), values...)
}

// Values returns the values of key without the "#" sentinel.
func (c *Config) Values(key string) []string {
	var out []string
	for _, v := range c.entries[key] {
		if v != Default {
			out = append(out, v)
		}
	}
	return out
}

// Set replaces the values of key.
func (c *Config) Set(key string, values ...string) {
	if c.entries == nil {
		c.entries = make(map[string][]string)
	}
	c.entries[key] = append([]string(nil), values...)
}

func (c *Config) Centralities() []string    { return c.Get(Centrality) }
func (c *Config) CutCombinations() []string { return c.Get(CutCombination) }
func (c *Config) FitTypes() []string        { return c.Values(FitType) }
func (c *Config) MotherLeaves() []string    { return c.Values(MotherLeaf) }

// DaughterLeaves returns the mu+ and mu- leaf names.
func (c *Config) DaughterLeaves() []string {
	leaves := append(c.Values(MuplusLeaf), c.Values(MuminusLeaf)...)
	return append(leaves, c.Values(DaughterLeafs)...)
}

// ResultFile returns the first result path, or "" when unset. ok is false
// when several paths were given.
func (c *Config) ResultFile() (path string, ok bool) {
	paths := c.Values(ResultFilePath)
	switch len(paths) {
	case 0:
		return "", true
	case 1:
		return paths[0], true
	}
	return paths[0], false
}
