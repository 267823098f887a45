// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"labscan/internal/detector"
	"labscan/internal/paths"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format    string `yaml:"format"`
		Statuses  string `yaml:"statuses"`
		Verbose   bool   `yaml:"verbose"`
		Debug     bool   `yaml:"debug"`
		NoColor   bool   `yaml:"no_color"`
		ShowText  bool   `yaml:"show_text"`
		ShowTerms bool   `yaml:"show_terms"`
	} `yaml:"defaults"`

	// Path to a reference table replacing the built-in one
	KnowledgeBase string `yaml:"knowledge_base"`

	// Preprocessor configurations
	Preprocessors struct {
		MaxFileSize int64     `yaml:"max_file_size"`
		MaxPDFPages int       `yaml:"max_pdf_pages"`
		OCR         OCRConfig `yaml:"ocr"`
	} `yaml:"preprocessors"`

	// HTTP API settings
	Server struct {
		Port      int    `yaml:"port"`
		BodyLimit string `yaml:"body_limit"`
	} `yaml:"server"`

	// Profiles for different review scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// OCRConfig selects the external text recognition command
type OCRConfig struct {
	Command  string   `yaml:"command"`
	Args     []string `yaml:"args"`
	Language string   `yaml:"language"`
	Retries  int      `yaml:"retries"`
}

// Profile represents a named set of output settings
type Profile struct {
	Format        string `yaml:"format"`
	Statuses      string `yaml:"statuses"`
	NoColor       bool   `yaml:"no_color"`
	ShowText      bool   `yaml:"show_text"`
	KnowledgeBase string `yaml:"knowledge_base"`
	Description   string `yaml:"description"`
}

var bodyLimitPattern = regexp.MustCompile(`^[0-9]+[KMGTP]?$`)

// defaultProfiles are available without a config file
func defaultProfiles() map[string]Profile {
	return map[string]Profile{
		"triage": {
			Format:      "text",
			Statuses:    "warning,critical",
			Description: "Only results outside the reference range",
		},
		"critical": {
			Format:      "text",
			Statuses:    "critical",
			Description: "Only results more than 30% outside the reference range",
		},
		"fhir": {
			Format:      "fhir",
			Statuses:    "all",
			NoColor:     true,
			Description: "FHIR R4 bundle for import into an EHR",
		},
	}
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: defaultProfiles(),
	}

	config.Defaults.Format = "text"
	config.Defaults.Statuses = "all"
	config.Defaults.ShowTerms = true

	config.Preprocessors.MaxFileSize = 10 * 1024 * 1024
	config.Preprocessors.MaxPDFPages = 50
	config.Preprocessors.OCR.Command = "tesseract"
	config.Preprocessors.OCR.Language = "eng"
	config.Preprocessors.OCR.Retries = 2

	config.Server.Port = 8080
	config.Server.BodyLimit = "12M"

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	defaultShowTerms := config.Defaults.ShowTerms

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// A bool missing from the file unmarshals as false; keep the default instead.
	if !containsField(data, "defaults", "show_terms") {
		config.Defaults.ShowTerms = defaultShowTerms
	}

	// Relative knowledge base paths are resolved against the config file
	if kb := config.KnowledgeBase; kb != "" {
		kb = paths.NormalizePath(kb)
		if !filepath.IsAbs(kb) {
			kb = filepath.Join(filepath.Dir(cleanPath), kb)
		}
		config.KnowledgeBase = kb
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	for _, name := range []string{"labscan.yaml", "labscan.yml", ".labscan.yaml", ".labscan.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if standardConfig := paths.GetConfigFile(); fileExists(standardConfig) {
		return standardConfig
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names in sorted order
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile overlays the named profile on the defaults. Empty profile
// fields leave the default in place; boolean fields can only switch on.
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("profile %q not found (available: %s)", name, strings.Join(c.ListProfiles(), ", "))
	}

	if profile.Format != "" {
		c.Defaults.Format = profile.Format
	}
	if profile.Statuses != "" {
		c.Defaults.Statuses = profile.Statuses
	}
	if profile.KnowledgeBase != "" {
		c.KnowledgeBase = paths.NormalizePath(profile.KnowledgeBase)
	}
	c.Defaults.NoColor = c.Defaults.NoColor || profile.NoColor
	c.Defaults.ShowText = c.Defaults.ShowText || profile.ShowText

	return nil
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			_, exists := current[key]
			return exists
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return false
		}
		current = next
	}
	return false
}

// ValidateConfig checks value ranges and paths
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := ValidateStatuses(config.Defaults.Statuses); err != nil {
		return fmt.Errorf("defaults.statuses: %w", err)
	}
	if config.Preprocessors.MaxFileSize < 0 {
		return fmt.Errorf("preprocessors.max_file_size must not be negative")
	}
	if config.Preprocessors.MaxPDFPages < 0 {
		return fmt.Errorf("preprocessors.max_pdf_pages must not be negative")
	}
	if config.Preprocessors.OCR.Retries < 0 {
		return fmt.Errorf("preprocessors.ocr.retries must not be negative")
	}
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", config.Server.Port)
	}
	if config.Server.BodyLimit != "" && !bodyLimitPattern.MatchString(config.Server.BodyLimit) {
		return fmt.Errorf("server.body_limit %q must look like 12M", config.Server.BodyLimit)
	}

	if err := paths.ValidatePath(config.KnowledgeBase); err != nil {
		return fmt.Errorf("knowledge_base: %w", err)
	}

	for name, profile := range config.Profiles {
		if err := ValidateStatuses(profile.Statuses); err != nil {
			return fmt.Errorf("profile '%s' statuses: %w", name, err)
		}
		if err := paths.ValidatePath(profile.KnowledgeBase); err != nil {
			return fmt.Errorf("profile '%s' knowledge_base: %w", name, err)
		}
	}

	return nil
}

// ValidateStatuses checks a comma separated status filter such as
// "warning,critical". Empty and "all" are accepted.
func ValidateStatuses(statuses string) error {
	if statuses == "" || statuses == "all" {
		return nil
	}
	for _, s := range strings.Split(statuses, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !detector.Status(s).Valid() {
			return fmt.Errorf("unknown status %q", s)
		}
	}
	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
// This is the shared helper used by both the CLI and the web server.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg, _ = LoadConfig("")
	}
	return cfg
}
