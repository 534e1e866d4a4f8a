package main

import (
	"errors"
	"path/filepath"
)

func (c Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("missing -in")
	}
	if c.OutputDir == "" {
		return errors.New("missing -out")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InputDir:  filepath.FromSlash("backrooms_recreation/recreated_conversations"),
		OutputDir: filepath.FromSlash("backrooms_recreation/website_ready"),
	}
}
