package document

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// fileTimestamp is the layout used in archive and backup file names.
const fileTimestamp = "20060102_150405"

const logSuffix = "_log"

// LogPath derives the active log file path for an SG document:
// dir/X.md -> dir/X_log.md.
func LogPath(sgPath string) string {
	dir := filepath.Dir(sgPath)
	base := filepath.Base(sgPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+logSuffix+ext)
}

// ArchivePath derives the archive name for an active log file:
// dir/X_log.md -> dir/X_log_archive_<timestamp>.md.
func ArchivePath(logPath string, now time.Time) string {
	ext := filepath.Ext(logPath)
	stem := strings.TrimSuffix(logPath, ext)
	return fmt.Sprintf("%s_archive_%s%s", stem, now.Format(fileTimestamp), ext)
}

// ArchiveGlob returns the glob pattern matching all archived logs for the
// given active log path.
func ArchiveGlob(logPath string) string {
	ext := filepath.Ext(logPath)
	stem := strings.TrimSuffix(logPath, ext)
	return stem + "_archive_*" + ext
}

// HasArchives reports whether any archived log files exist next to the
// active log.
func HasArchives(logPath string) (bool, error) {
	matches, err := filepath.Glob(ArchiveGlob(logPath))
	if err != nil {
		return false, fmt.Errorf("scan archives: %w", err)
	}
	return len(matches) > 0, nil
}

// BackupPath derives the safety-backup name written before a mutating
// command: dir/X.md -> dir/X.backup_<command>_<timestamp>.md.
func BackupPath(sgPath, command string, now time.Time) string {
	ext := filepath.Ext(sgPath)
	stem := strings.TrimSuffix(sgPath, ext)
	return fmt.Sprintf("%s.backup_%s_%s%s", stem, command, now.Format(fileTimestamp), ext)
}

// FindBackups returns the safety backups belonging to sgPath, matched by
// the exact backup pattern so unrelated files are never picked up.
func FindBackups(sgPath string) ([]string, error) {
	dir := filepath.Dir(sgPath)
	base := filepath.Base(sgPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	pattern := regexp.MustCompile(
		`^` + regexp.QuoteMeta(stem) + `\.backup_[a-zA-Z-]+_\d{8}_\d{6}` + regexp.QuoteMeta(ext) + `$`,
	)

	candidates, err := filepath.Glob(filepath.Join(dir, stem+".backup_*"))
	if err != nil {
		return nil, fmt.Errorf("scan backups: %w", err)
	}
	var backups []string
	for _, c := range candidates {
		if pattern.MatchString(filepath.Base(c)) {
			backups = append(backups, c)
		}
	}
	return backups, nil
}

// Backup copies the file at sgPath to its safety-backup name and returns
// the backup path. Backups are write-once; they are never read back by the
// tool.
func Backup(sgPath, command string) (string, error) {
	data, err := os.ReadFile(sgPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", sgPath, err)
	}
	target := BackupPath(sgPath, command, time.Now())
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup %s: %w", target, err)
	}
	return target, nil
}
