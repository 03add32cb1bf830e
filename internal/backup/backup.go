// Package backup snapshots the persistence layer on an interval. The
// store has no durability guarantee of its own, so a periodic copy is the
// only way back from a corrupted data set.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config drives the backup loop.
type Config struct {
	Enabled       bool
	IntervalHours int
	StoragePath   string
	RetentionDays int
}

// Service copies the data source (a directory of JSON collections or a
// sqlite file) into timestamped snapshots.
type Service struct {
	sourcePath string
	config     Config
	logger     *zerolog.Logger
}

// NewService builds a backup service for the given source.
func NewService(sourcePath string, cfg Config, logger *zerolog.Logger) *Service {
	return &Service{sourcePath: sourcePath, config: cfg, logger: logger}
}

// Start runs the backup loop until ctx is done. The first backup runs
// immediately.
func (s *Service) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	interval := time.Duration(s.config.IntervalHours) * time.Hour
	s.logger.Info().Dur("interval", interval).Msg("Backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("Initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("Scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup copies the source into a timestamped snapshot directory.
func (s *Service) PerformBackup() error {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	dest := filepath.Join(s.config.StoragePath, "backup_"+timestamp)

	s.logger.Info().Str("path", dest).Msg("Performing data backup")

	info, err := os.Stat(s.sourcePath)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if info.IsDir() {
		err = copyDir(s.sourcePath, dest)
	} else {
		err = copyFile(s.sourcePath, dest+filepath.Ext(s.sourcePath))
	}
	if err != nil {
		return err
	}

	s.logger.Info().Msg("Backup completed successfully")
	return nil
}

// CleanupOldBackups removes snapshots older than the retention window.
func (s *Service) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	entries, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list backups")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "backup_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.config.StoragePath, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.logger.Error().Err(err).Str("path", path).Msg("Failed to remove old backup")
		} else {
			s.logger.Info().Str("path", path).Msg("Old backup removed")
		}
	}
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	_, err = io.Copy(destination, source)
	return err
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}
