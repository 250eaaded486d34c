// Package config provides YAML-based configuration loading for the kiosk.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level kiosk configuration, loaded from kiosk.yaml.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	DB     DBConfig     `yaml:"db"`
	Server ServerConfig `yaml:"server"`
	Ppurio PpurioConfig `yaml:"ppurio"`
	Ecount EcountConfig `yaml:"ecount"`
}

// StoreConfig holds the branch profile defaults seeded into StoreSettings.
type StoreConfig struct {
	Name             string `yaml:"name"`
	Phone            string `yaml:"phone"`
	Address          string `yaml:"address"`
	EstimatedMinutes int    `yaml:"estimated_minutes"`
}

// DBConfig selects and parameterizes the persistent store. Driver is
// "mysql" for shop deployments or "sqlite" for single-kiosk installs.
type DBConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Path     string `yaml:"path"` // sqlite file path
}

// ServerConfig holds the kiosk API server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// PpurioConfig holds Ppurio alimtalk/SMS credentials and the staff digest
// schedule (5-field cron expression; empty disables the digest).
type PpurioConfig struct {
	Account      string `yaml:"account"`
	APIKey       string `yaml:"api_key"`
	Sender       string `yaml:"sender"`
	TemplateCode string `yaml:"template_code"`
	StaffPhone   string `yaml:"staff_phone"`
	DigestCron   string `yaml:"digest_cron"`
}

// EcountConfig holds Ecount ERP OAPI credentials and slip account codes.
type EcountConfig struct {
	Zone    string `yaml:"zone"`
	ComCode string `yaml:"com_code"`
	UserID  string `yaml:"user_id"`
	APIKey  string `yaml:"api_key"`
	SiteCd  string `yaml:"site_cd"`

	Cust   string `yaml:"cust"`
	CrCode string `yaml:"cr_code"`
	AcctNo string `yaml:"acct_no"`

	PurchaseCust   string `yaml:"purchase_cust"`
	PurchaseDrCode string `yaml:"purchase_dr_code"`
	PurchaseAcctNo string `yaml:"purchase_acct_no"`

	MembershipDiscountRate float64 `yaml:"membership_discount_rate"`
	MembershipDiscountMax  int     `yaml:"membership_discount_max"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Store.Name == "" {
		c.Store.Name = "QuickOil"
	}
	if c.Store.EstimatedMinutes == 0 {
		c.Store.EstimatedMinutes = 30
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.User == "" {
		c.DB.User = "root"
	}
	if c.DB.Database == "" {
		c.DB.Database = "quickoil"
	}
	if c.DB.Path == "" {
		c.DB.Path = "kiosk.db"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Ecount.Zone == "" {
		c.Ecount.Zone = "CD"
	}
	if c.Ecount.MembershipDiscountRate == 0 {
		c.Ecount.MembershipDiscountRate = 0.2
	}
	if c.Ecount.MembershipDiscountMax == 0 {
		c.Ecount.MembershipDiscountMax = 15000
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.DB.Driver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("db.driver must be mysql or sqlite, got %q", c.DB.Driver))
	}
	if c.DB.Driver == "mysql" && c.DB.Database == "" {
		errs = append(errs, "db.database is required for mysql")
	}
	if c.DB.Driver == "sqlite" && c.DB.Path == "" {
		errs = append(errs, "db.path is required for sqlite")
	}
	if c.Ppurio.DigestCron != "" && c.Ppurio.StaffPhone == "" {
		errs = append(errs, "ppurio.staff_phone is required when digest_cron is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
