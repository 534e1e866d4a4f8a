package main

import (
	"errors"
	"path/filepath"
)

func (c Config) Validate() error {
	if c.BaseDir == "" {
		return errors.New("missing -base-dir")
	}
	if c.TemplatesDir == "" {
		return errors.New("missing -templates-dir")
	}
	if c.Models == "" {
		return errors.New("missing -models")
	}
	if c.MaxTurns <= 0 {
		return errors.New("max-turns must be > 0")
	}
	if c.MaxConversations < 0 {
		return errors.New("max-conversations must be >= 0")
	}
	if c.OnlyStage != "" && c.FromStage != "" {
		return errors.New("use only one of -only-stage or -from-stage")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		BaseDir:      filepath.FromSlash("backrooms_recreation"),
		TemplatesDir: filepath.FromSlash("UniversalBackrooms/templates"),
		Engine:       "backrooms",
		BackroomsDir: filepath.FromSlash("UniversalBackrooms"),
		Models:       "opus,opus",
		MaxTurns:     20,
		Pretty:       true,
	}
}
