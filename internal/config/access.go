package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"target-shooting/internal/scoring"
)

// AccessConfig is the identity table: who is admin, who enters which room, and
// the shared login secret.
type AccessConfig struct {
	Admins     []string       `yaml:"admins"`
	Rooms      map[string]int `yaml:"rooms"`
	Password   string         `yaml:"password"`
	PolicyPath string         `yaml:"-"`

	// envErr records a malformed ACCESS_* value; Resolve reports it.
	envErr error
}

func DefaultAccess() AccessConfig {
	return AccessConfig{
		Admins: []string{"user01"},
		Rooms: map[string]int{
			"user02": 1,
			"user03": 2,
			"user04": 3,
		},
		Password: "12345678",
	}
}

func loadAccess(cfg AccessConfig) AccessConfig {
	if raw := os.Getenv("ACCESS_ADMINS"); raw != "" {
		cfg.Admins = splitList(raw)
	}
	if raw := os.Getenv("ACCESS_ROOMS"); raw != "" {
		rooms, err := ParseRooms(raw)
		if err != nil {
			cfg.envErr = fmt.Errorf("ACCESS_ROOMS: %w", err)
		} else {
			cfg.Rooms = rooms
		}
	}
	if raw := os.Getenv("ACCESS_PASSWORD"); raw != "" {
		cfg.Password = raw
	}
	if raw := os.Getenv("ACCESS_POLICY_PATH"); raw != "" {
		cfg.PolicyPath = raw
	}
	return cfg
}

// ParseRooms reads "user02:1,user03:2" into a username to room map.
func ParseRooms(raw string) (map[string]int, error) {
	rooms := make(map[string]int)
	for _, pair := range splitList(raw) {
		name, room, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("room assignment %q must look like user:room", pair)
		}
		value, err := strconv.Atoi(strings.TrimSpace(room))
		if err != nil {
			return nil, fmt.Errorf("room assignment %q: %w", pair, err)
		}
		rooms[strings.TrimSpace(name)] = value
	}
	return rooms, nil
}

// Resolve overlays the YAML policy file, when configured, on top of cfg. A
// malformed ACCESS_* variable fails here rather than falling back to defaults.
func (cfg AccessConfig) Resolve() (AccessConfig, error) {
	if cfg.envErr != nil {
		return AccessConfig{}, cfg.envErr
	}
	if cfg.PolicyPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(cfg.PolicyPath)
	if err != nil {
		return AccessConfig{}, fmt.Errorf("read access policy: %w", err)
	}
	var file AccessConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return AccessConfig{}, fmt.Errorf("parse access policy: %w", err)
	}
	if len(file.Admins) > 0 {
		cfg.Admins = file.Admins
	}
	if len(file.Rooms) > 0 {
		cfg.Rooms = file.Rooms
	}
	if file.Password != "" {
		cfg.Password = file.Password
	}
	return cfg, nil
}

func (cfg AccessConfig) Policy() (*scoring.Policy, error) {
	rooms := make(map[string]scoring.RoomID, len(cfg.Rooms))
	for name, room := range cfg.Rooms {
		rooms[name] = scoring.RoomID(room)
	}
	return scoring.NewPolicy(cfg.Admins, rooms)
}
