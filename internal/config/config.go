package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"weekly/internal/shared/infrastructure"
)

// EnvPrefix préfixe des variables d'environnement (WEEKLY_DATA_DIR, ...)
const EnvPrefix = "WEEKLY"

// BrandPattern associe une marque aux fragments reconnus dans un chemin de fichier
type BrandPattern struct {
	Brand    string   `yaml:"brand"`
	Patterns []string `yaml:"patterns"`
}

// Config porte toute la configuration d'un run; passée explicitement à chaque composant
type Config struct {
	DataDir         string
	AMSWeekWindow   int
	Workers         int
	LogLevel        string
	LogFormat       string
	WarehouseDriver string
	WarehouseDSN    string
	AliasFile       string
	Aliases         infrastructure.AliasTable
	BrandCandidates []BrandPattern
}

// Default retourne la configuration par défaut du process
func Default() *Config {
	return &Config{
		DataDir:         "data",
		AMSWeekWindow:   4,
		Workers:         1,
		LogLevel:        "info",
		LogFormat:       "console",
		WarehouseDriver: "postgres",
		Aliases:         DefaultAliases(),
		BrandCandidates: DefaultBrandCandidates(),
	}
}

// Load lit .env, les variables WEEKLY_* et un éventuel weekly.yaml
// configFile vide: recherche de weekly.yaml dans le répertoire courant
func Load(configFile string) (*Config, error) {
	// .env optionnel
	_ = godotenv.Load()

	def := Default()
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("ams_week_window", def.AMSWeekWindow)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("log.level", def.LogLevel)
	v.SetDefault("log.format", def.LogFormat)
	v.SetDefault("warehouse.driver", def.WarehouseDriver)
	v.SetDefault("warehouse.dsn", "")
	v.SetDefault("aliases_file", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("weekly")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := def
	cfg.DataDir = v.GetString("data_dir")
	cfg.AMSWeekWindow = v.GetInt("ams_week_window")
	cfg.Workers = v.GetInt("workers")
	cfg.LogLevel = v.GetString("log.level")
	cfg.LogFormat = v.GetString("log.format")
	cfg.WarehouseDriver = v.GetString("warehouse.driver")
	cfg.WarehouseDSN = v.GetString("warehouse.dsn")
	cfg.AliasFile = v.GetString("aliases_file")

	if cfg.AliasFile != "" {
		if err := cfg.ApplyAliasFile(cfg.AliasFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// aliasFile format du fichier YAML de surcharge des alias
type aliasFile struct {
	Aliases map[string][]string `yaml:"aliases"`
	Brands  []BrandPattern      `yaml:"brands"`
}

// ApplyAliasFile surcharge les alias et les motifs de marque depuis un fichier YAML
func (c *Config) ApplyAliasFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read alias file: %w", err)
	}
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse alias file %s: %w", path, err)
	}
	c.Aliases = c.Aliases.Override(infrastructure.AliasTable(f.Aliases))
	if len(f.Brands) > 0 {
		c.BrandCandidates = f.Brands
	}
	return nil
}

// Validate vérifie la cohérence de la configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data dir is required")
	}
	if c.AMSWeekWindow < 0 {
		return fmt.Errorf("ams week window must be >= 0, got %d", c.AMSWeekWindow)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	switch c.WarehouseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported warehouse driver %q", c.WarehouseDriver)
	}
	return nil
}

// Chemins d'entrée

func (c *Config) RawSalesDir() string     { return filepath.Join(c.DataDir, "raw", "sales") }
func (c *Config) RawInventoryDir() string { return filepath.Join(c.DataDir, "raw", "inventory") }
func (c *Config) AMSDir() string          { return filepath.Join(c.DataDir, "ams_weekly_data") }
func (c *Config) MasterFile() string      { return filepath.Join(c.DataDir, "master", "sku_master.xlsx") }

// Chemins de sortie

func (c *Config) ProcessedDir() string { return filepath.Join(c.DataDir, "processed") }

func (c *Config) SalesSnapshot() string {
	return filepath.Join(c.ProcessedDir(), "weekly_sales_snapshot.csv")
}

func (c *Config) InventoryModelSnapshot() string {
	return filepath.Join(c.ProcessedDir(), "inventory_model_snapshot.csv")
}

func (c *Config) InventoryAMSSnapshot() string {
	return filepath.Join(c.ProcessedDir(), "inventory_ams_snapshot.csv")
}

func (c *Config) AMSFact() string {
	return filepath.Join(c.AMSDir(), "ams_weekly_fact", "ams_weekly_fact.csv")
}

func (c *Config) AMSFactWithCategory() string {
	return filepath.Join(c.AMSDir(), "ams_weekly_fact", "ams_weekly_fact_with_category.csv")
}

func (c *Config) AdsAggregated() string {
	return filepath.Join(c.AMSDir(), "processed_ads", "ads_weekly_aggregated.csv")
}

func (c *Config) WeeklyFact() string {
	return filepath.Join(c.AMSDir(), "processed_ads", "business_ads_joined.csv")
}

func (c *Config) WeeklyFactParquet() string {
	return filepath.Join(c.ProcessedDir(), "weekly_fact.parquet")
}

// ReservedAMSDirs dossiers de ams_weekly_data qui ne sont pas des marques
var ReservedAMSDirs = map[string]struct{}{
	"ams_weekly_fact": {},
	"processed_ads":   {},
	"ads_report":      {},
	"business_report": {},
}
