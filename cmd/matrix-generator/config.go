package main

import (
	"errors"
	"path/filepath"
)

func (c Config) Validate() error {
	if c.IndexPath == "" {
		return errors.New("missing -index")
	}
	if c.OutputPath == "" {
		return errors.New("missing -out")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		IndexPath:  filepath.FromSlash("backrooms_recreation/original_conversations/_chronological_master.json"),
		OutputPath: filepath.FromSlash("backrooms_matrix.md"),
	}
}
