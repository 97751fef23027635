// Package config loads the board and server configuration from flags, an
// optional config file and SKETCHBOARD_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SKETCHBOARD_HTTP_PORT.
const EnvPrefix = "SKETCHBOARD"

// Config is the complete configuration of the board and the server.
type Config struct {
	HTTP    HTTP    `mapstructure:"http" json:"http"`
	Log     Log     `mapstructure:"log" json:"log"`
	Storage Storage `mapstructure:"storage" json:"storage"`
	Library Library `mapstructure:"library" json:"library"`
	Client  Client  `mapstructure:"client" json:"client"`
	Canvas  Canvas  `mapstructure:"canvas" json:"canvas"`
	MDNS    MDNS    `mapstructure:"mdns" json:"mdns"`
}

// HTTP is the listen address of the server.
type HTTP struct {
	Address string `mapstructure:"address" json:"address"`
	Port    int    `mapstructure:"port" json:"port"`
}

// Addr is the listen address of the server.
func (h HTTP) Addr() string {
	return fmt.Sprintf("%s:%d", h.Address, h.Port)
}

// Log sets the log level and an optional log file.
type Log struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file" json:"file"`
}

// Storage is where saved sketches are written.
type Storage struct {
	Dir string `mapstructure:"dir" json:"dir"`
}

// Library is where the reference sketches for search are loaded from.
// Saved sketches join the library, so it defaults to the storage dir.
type Library struct {
	Dir string `mapstructure:"dir" json:"dir"`
}

// Client configures where the board uploads its drawings.
type Client struct {
	Endpoint string        `mapstructure:"endpoint" json:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout"`
}

// Canvas holds the board size and its starting tool, colour and size.
type Canvas struct {
	Width     int     `mapstructure:"width" json:"width"`
	Height    int     `mapstructure:"height" json:"height"`
	Tool      string  `mapstructure:"tool" json:"tool"`
	Color     string  `mapstructure:"color" json:"color"`
	Size      float64 `mapstructure:"size" json:"size"`
	Triangles bool    `mapstructure:"triangles" json:"triangles"`
}

// MDNS toggles advertising and discovering the server on the LAN.
type MDNS struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

var defaults = map[string]any{
	"http.address":     "",
	"http.port":        8000,
	"log.level":        "info",
	"log.file":         "",
	"storage.dir":      "sketches",
	"library.dir":      "",
	"client.endpoint":  "http://localhost:8000",
	"client.timeout":   10 * time.Second,
	"canvas.width":     800,
	"canvas.height":    600,
	"canvas.tool":      "marker",
	"canvas.color":     "#000000",
	"canvas.size":      5.0,
	"canvas.triangles": true,
	"mdns.enabled":     false,
}

var bindPFlags = []string{
	"http.address", "http.port", "log.level", "log.file", "storage.dir", "library.dir",
	"client.endpoint", "mdns.enabled",
}

// DefineFlags adds the command line flags GetConfig binds.
func DefineFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("http.address", "a", "", "interface address to listen on")
	cmd.PersistentFlags().IntP("http.port", "p", 8000, "port to bind HTTP server to")
	cmd.PersistentFlags().StringP("log.level", "", "info", "set the log level: debug, info, warn, error or none")
	cmd.PersistentFlags().StringP("log.file", "", "", "optional log file - if not specified logs go to STDOUT")
	cmd.PersistentFlags().StringP("storage.dir", "", "sketches", "directory saved sketches are written to")
	cmd.PersistentFlags().StringP("library.dir", "", "", "directory of reference sketches, defaults to storage.dir")
	cmd.PersistentFlags().StringP("client.endpoint", "e", "http://localhost:8000", "server the board uploads to")
	cmd.PersistentFlags().BoolP("mdns.enabled", "", false, "advertise or discover the server over mDNS")
}

// GetConfig merges defaults, the config file, the environment and the
// changed flags of cmd, in increasing priority. A missing config file is
// not an error.
func GetConfig(cmd *cobra.Command, configFile string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for _, flag := range bindPFlags {
			f := cmd.Flags().Lookup(flag)
			if f == nil {
				f = cmd.PersistentFlags().Lookup(flag)
			}
			if f != nil {
				_ = v.BindPFlag(flag, f)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound *os.PathError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("error reading config file %s: %w", configFile, err)
			}
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if conf.Library.Dir == "" {
		conf.Library.Dir = conf.Storage.Dir
	}
	return conf, nil
}
