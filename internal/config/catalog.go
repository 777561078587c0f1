package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogConfig is the public configuration consumed by the import engine.
// It is owned by the configuration collaborator and shipped as a YAML file.
type CatalogConfig struct {
	MaxSkillsInBulkImport int `yaml:"maxSkillsInBulkImport" json:"maxSkillsInBulkImport"`
	MaxSkillsPerSubject   int `yaml:"maxSkillsPerSubject" json:"maxSkillsPerSubject"`
	DefaultPageSize       int `yaml:"defaultPageSize" json:"defaultPageSize"`
	MaxPageSize           int `yaml:"maxPageSize" json:"maxPageSize"`
	MaxFilterLength       int `yaml:"maxFilterLength" json:"maxFilterLength"`
}

func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		MaxSkillsInBulkImport: 25,
		MaxSkillsPerSubject:   100,
		DefaultPageSize:       10,
		MaxPageSize:           200,
		MaxFilterLength:       50,
	}
}

// LoadCatalogConfig reads the YAML file at path on top of the defaults. An
// empty path returns the defaults.
func LoadCatalogConfig(path string) (CatalogConfig, error) {
	cfg := DefaultCatalogConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return CatalogConfig{}, fmt.Errorf("read catalog config: %w", err)
	}
	return ParseCatalogConfig(b)
}

func ParseCatalogConfig(b []byte) (CatalogConfig, error) {
	cfg := DefaultCatalogConfig()
	var doc struct {
		Catalog *CatalogConfig `yaml:"catalog"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return CatalogConfig{}, fmt.Errorf("parse catalog config: %w", err)
	}
	if doc.Catalog != nil {
		cfg = cfg.merge(*doc.Catalog)
	}
	return cfg.normalized(), nil
}

func (c CatalogConfig) merge(o CatalogConfig) CatalogConfig {
	if o.MaxSkillsInBulkImport != 0 {
		c.MaxSkillsInBulkImport = o.MaxSkillsInBulkImport
	}
	if o.MaxSkillsPerSubject != 0 {
		c.MaxSkillsPerSubject = o.MaxSkillsPerSubject
	}
	if o.DefaultPageSize != 0 {
		c.DefaultPageSize = o.DefaultPageSize
	}
	if o.MaxPageSize != 0 {
		c.MaxPageSize = o.MaxPageSize
	}
	if o.MaxFilterLength != 0 {
		c.MaxFilterLength = o.MaxFilterLength
	}
	return c
}

func (c CatalogConfig) withEnvOverrides(opt func(string) string) CatalogConfig {
	c.MaxSkillsInBulkImport = intOr(opt("MAX_SKILLS_IN_BULK_IMPORT"), c.MaxSkillsInBulkImport)
	c.MaxSkillsPerSubject = intOr(opt("MAX_SKILLS_PER_SUBJECT"), c.MaxSkillsPerSubject)
	return c.normalized()
}

func (c CatalogConfig) normalized() CatalogConfig {
	d := DefaultCatalogConfig()
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = d.MaxPageSize
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = d.DefaultPageSize
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
	if c.MaxFilterLength <= 0 {
		c.MaxFilterLength = d.MaxFilterLength
	}
	return c
}
