package server

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/store"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Store  *StoreSettings  `hcl:"store,block"`
	Tables []TableConfig   `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// StoreSettings selects where table snapshots are kept
type StoreSettings struct {
	Driver string `hcl:"driver,optional"`
	Path   string `hcl:"path,optional"`
}

// TableConfig defines a table created at startup if it does not exist yet.
// The label doubles as the game id.
type TableConfig struct {
	Name        string `hcl:"name,label"`
	Blind       int    `hcl:"blind"`
	MaxPlayers  int    `hcl:"max_players,optional"`
	TimePerTurn int    `hcl:"time_per_turn,optional"`
}

// Params converts the table block to engine parameters.
func (t TableConfig) Params() game.Params {
	return game.Params{
		Blind:       uint64(t.Blind),
		MaxPlayers:  uint64(t.MaxPlayers),
		TimePerTurn: uint64(t.TimePerTurn),
	}
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	c := &ServerConfig{}
	c.applyDefaults()
	return c
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Store == nil {
		c.Store = &StoreSettings{}
	}
	if c.Store.Driver == "" {
		c.Store.Driver = store.DriverMemory
	}
	if c.Store.Path == "" {
		switch c.Store.Driver {
		case store.DriverFile:
			c.Store.Path = "tables"
		case store.DriverSQLite:
			c.Store.Path = "holdem.db"
		}
	}

	for i := range c.Tables {
		if c.Tables[i].MaxPlayers == 0 {
			c.Tables[i].MaxPlayers = 6
		}
		if c.Tables[i].TimePerTurn == 0 {
			c.Tables[i].TimePerTurn = 30
		}
	}
}

// OverrideStore replaces the store settings, defaulting the path for the
// new driver when none is given.
func (c *ServerConfig) OverrideStore(driver, path string) {
	if driver != "" && driver != c.Store.Driver {
		c.Store = &StoreSettings{Driver: driver}
	}
	if path != "" {
		c.Store.Path = path
	}
	c.applyDefaults()
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	switch c.Store.Driver {
	case store.DriverMemory, store.DriverFile, store.DriverSQLite:
	default:
		return fmt.Errorf("invalid store driver: %s", c.Store.Driver)
	}

	seen := make(map[string]bool)
	for _, table := range c.Tables {
		if seen[table.Name] {
			return fmt.Errorf("table %s: defined more than once", table.Name)
		}
		seen[table.Name] = true
		if table.Blind < 0 || table.MaxPlayers < 0 || table.TimePerTurn < 0 {
			return fmt.Errorf("table %s: values must not be negative", table.Name)
		}
		if err := table.Params().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetTableByName returns a table configuration by name
func (c *ServerConfig) GetTableByName(name string) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}
