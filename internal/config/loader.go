package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/freeeve/trooper-tactics/api/internal/bot"
	"github.com/freeeve/trooper-tactics/api/pkg/tactics"
)

// LoadWeights reads planner weights from a YAML file. Keys missing from the
// file keep their default value; an empty path returns the defaults.
func LoadWeights(path string) (bot.Weights, error) {
	w := bot.DefaultWeights()
	if path == "" {
		return w, nil
	}
	if err := decodeFile(path, &w); err != nil {
		return bot.Weights{}, fmt.Errorf("load weights: %w", err)
	}
	return w, nil
}

// LoadParams reads game constants from a YAML file on top of the defaults
// and validates the result. Role tables replace the default entry of the
// same role as a whole.
func LoadParams(path string) (*tactics.Params, error) {
	p := tactics.DefaultParams()
	if path == "" {
		return p, nil
	}
	if err := decodeFile(path, p); err != nil {
		return nil, fmt.Errorf("load params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("load params %s: %w", path, err)
	}
	return p, nil
}

// SearchOptions builds planner options from the configuration.
func (c *Config) SearchOptions() bot.Options {
	opts := bot.DefaultOptions()
	if c.SearchMaxDepth >= 0 {
		opts.MaxDepth = c.SearchMaxDepth
	}
	opts.Deadline = c.SearchDeadline
	return opts
}

func decodeFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
