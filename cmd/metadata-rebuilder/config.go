package main

import (
	"errors"
	"path/filepath"
)

func (c Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("missing -in")
	}
	if c.OutputPath == "" {
		return errors.New("missing -out")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InputDir:   filepath.FromSlash("backrooms_recreation/original_conversations"),
		OutputPath: filepath.FromSlash("backrooms_recreation/metadata/conversations_metadata.json"),
		Pretty:     true,
	}
}
