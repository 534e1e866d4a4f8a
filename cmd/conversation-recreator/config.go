package main

import (
	"errors"
	"fmt"
	"path/filepath"
)

func (c Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("missing -in")
	}
	if c.OutputDir == "" {
		return errors.New("missing -out")
	}
	if c.TemplatesDir == "" {
		return errors.New("missing -templates-dir")
	}
	if len(c.Models) == 0 {
		return errors.New("missing -models")
	}
	if c.MaxTurns <= 0 {
		return errors.New("max-turns must be > 0")
	}
	if c.MaxConversations < 0 {
		return errors.New("max-conversations must be >= 0")
	}
	switch c.Engine {
	case "backrooms":
		if c.BackroomsDir == "" {
			return errors.New("missing -backrooms-dir for the backrooms engine")
		}
	case "dialogue":
	default:
		return fmt.Errorf("unknown -engine %q (backrooms|dialogue)", c.Engine)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InputDir:     filepath.FromSlash("backrooms_recreation/original_conversations"),
		OutputDir:    filepath.FromSlash("backrooms_recreation/recreated_conversations"),
		TemplatesDir: filepath.FromSlash("UniversalBackrooms/templates"),
		Engine:       "backrooms",
		BackroomsDir: filepath.FromSlash("UniversalBackrooms"),
		Models:       []string{"opus", "opus"},
		MaxTurns:     20,
	}
}
