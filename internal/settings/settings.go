// Package settings keeps per-guild configuration: a command prefix override
// and the roles that count as moderators.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/keshon/datastore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	maxPrefixLen = 5
	saveInterval = 10 * time.Second
)

var ErrInvalidPrefix = fmt.Errorf("prefix must be 1-%d characters without spaces", maxPrefixLen)

// Record is what is stored per guild.
type Record struct {
	Prefix   string   `json:"prefix,omitempty"`
	ModRoles []string `json:"mod_roles,omitempty"`
}

type Store struct {
	ds *datastore.DataStore
	// stop ends the autosave loop; ds.Close waits for it.
	stop context.CancelFunc
	// mu serializes read-modify-write cycles on records.
	mu sync.Mutex
}

// Open opens the settings file at path, creating it and its directory when
// missing. Changes are flushed every 10s and on Close.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("settings: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("settings: create directory: %w", err)
	}

	logger := log.Logger.With().Str("component", "settings").Logger()
	ctx, stop := context.WithCancel(context.Background())
	ds, err := datastore.New(ctx, path,
		datastore.WithSaveInterval(saveInterval),
		datastore.WithLogger(slog.New(zerolog.NewSlogHandler(logger))),
	)
	if err != nil {
		stop()
		return nil, err
	}
	return &Store{ds: ds, stop: stop}, nil
}

func (s *Store) Close() error {
	s.stop()
	return s.ds.Close()
}

func (s *Store) getOrCreateGuildRecord(guildID string) (Record, error) {
	if guildID == "" {
		return Record{}, errors.New("settings: empty guild id")
	}
	var record Record
	if _, err := s.ds.Get(guildID, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

func (s *Store) update(guildID string, fn func(*Record) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	if !fn(&record) {
		return nil
	}
	if record.Prefix == "" && len(record.ModRoles) == 0 {
		return s.ds.Delete(guildID)
	}
	return s.ds.Set(guildID, record)
}

// Prefix returns the guild's prefix override.
func (s *Store) Prefix(guildID string) (string, bool) {
	if guildID == "" {
		return "", false
	}
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("reading guild prefix")
		return "", false
	}
	return record.Prefix, record.Prefix != ""
}

// SetPrefix sets the override. An empty prefix clears it.
func (s *Store) SetPrefix(guildID, prefix string) error {
	if prefix != "" && !ValidPrefix(prefix) {
		return ErrInvalidPrefix
	}
	return s.update(guildID, func(r *Record) bool {
		r.Prefix = prefix
		return true
	})
}

// ValidPrefix reports whether p can be used as a command prefix.
func ValidPrefix(p string) bool {
	n := 0
	for _, r := range p {
		if unicode.IsSpace(r) {
			return false
		}
		n++
	}
	return n >= 1 && n <= maxPrefixLen
}

// ModRoles returns the moderator role ids of a guild.
func (s *Store) ModRoles(guildID string) ([]string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.ModRoles, nil
}

// IsModRole reports whether any of roleIDs is a moderator role.
func (s *Store) IsModRole(guildID string, roleIDs []string) bool {
	if guildID == "" || len(roleIDs) == 0 {
		return false
	}
	roles, err := s.ModRoles(guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("reading moderator roles")
		return false
	}
	for _, id := range roleIDs {
		if slices.Contains(roles, id) {
			return true
		}
	}
	return false
}

// AddModRole adds roleID. added is false if it was already present.
func (s *Store) AddModRole(guildID, roleID string) (added bool, err error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return false, errors.New("settings: empty role id")
	}
	err = s.update(guildID, func(r *Record) bool {
		if slices.Contains(r.ModRoles, roleID) {
			return false
		}
		r.ModRoles = append(r.ModRoles, roleID)
		added = true
		return true
	})
	return added, err
}

// RemoveModRole removes roleID. removed is false if it was not present.
func (s *Store) RemoveModRole(guildID, roleID string) (removed bool, err error) {
	err = s.update(guildID, func(r *Record) bool {
		i := slices.Index(r.ModRoles, roleID)
		if i < 0 {
			return false
		}
		r.ModRoles = slices.Delete(r.ModRoles, i, i+1)
		removed = true
		return true
	})
	return removed, err
}
