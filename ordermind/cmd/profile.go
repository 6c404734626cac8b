package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	profileDir      = ".ordermind"
	profileFile     = "client.toml"
	profileFileMode = 0o600
	profileDirMode  = 0o700
	defaultServer   = "http://localhost:3000"
)

// profile is what `ordermind login` remembers between runs.
type profile struct {
	Server string `toml:"server"`
	Email  string `toml:"email,omitempty"`
	Token  string `toml:"token,omitempty"`
}

// profilePath honours ORDERMIND_CONFIG, then ~/.ordermind/client.toml.
func profilePath() (string, error) {
	if p := os.Getenv("ORDERMIND_CONFIG"); p != "" {
		return filepath.Clean(p), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, profileDir, profileFile), nil
}

// clientSettings resolves server, email and token with the precedence
// flag, ORDERMIND_* environment, profile file, default.
func clientSettings(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("ordermind")
	v.AutomaticEnv()
	v.SetDefault("server", defaultServer)
	for _, key := range []string{"server", "email", "password", "token"} {
		if f := flags.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	path, err := profilePath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return v, nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return v, nil
}

func loadProfile(path string) (profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return profile{Server: defaultServer}, nil
		}
		return profile{}, fmt.Errorf("read profile: %w", err)
	}
	var p profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if p.Server == "" {
		p.Server = defaultServer
	}
	return p, nil
}

// saveProfile replaces the profile file atomically; it holds a token, so
// the file is private to the user.
func saveProfile(path string, p profile) error {
	if err := os.MkdirAll(filepath.Dir(path), profileDirMode); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".client-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("create temp profile: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp profile: %w", err)
	}
	if err := tmp.Chmod(profileFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp profile: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	cleanup = false
	return nil
}
