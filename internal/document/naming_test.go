package document

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var namingNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

func TestLogPath(t *testing.T) {
	assert.Equal(t, "/data/notes_log.md", LogPath("/data/notes.md"))
	assert.Equal(t, "notes_log.md", LogPath("notes.md"))
}

func TestArchivePath(t *testing.T) {
	got := ArchivePath("/data/notes_log.md", namingNow)
	assert.Equal(t, "/data/notes_log_archive_20250314_150926.md", got)
}

func TestBackupPath(t *testing.T) {
	got := BackupPath("/data/notes.md", "batch-modify", namingNow)
	assert.Equal(t, "/data/notes.backup_batch-modify_20250314_150926.md", got)
}

func TestHasArchives(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "notes_log.md")

	ok, err := HasArchives(logPath)
	require.NoError(t, err)
	assert.False(t, ok)

	archived := filepath.Join(dir, "notes_log_archive_20250314_150926.md")
	require.NoError(t, os.WriteFile(archived, []byte("x"), 0o644))

	ok, err = HasArchives(logPath)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFindBackups(t *testing.T) {
	dir := t.TempDir()
	sgPath := filepath.Join(dir, "notes.md")

	files := map[string]bool{
		"notes.backup_batch-modify_20250314_150926.md": true,
		"notes.backup_archive-log_20250314_160000.md":  true,
		// Wrong shapes must not be picked up.
		"notes.backup_batch-modify_20250314.md": false,
		"notes.backup_.md":                      false,
		"other.backup_batch-modify_20250314_150926.md": false,
		"notes.md": false,
	}
	for name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	backups, err := FindBackups(sgPath)
	require.NoError(t, err)

	var want []string
	for name, keep := range files {
		if keep {
			want = append(want, filepath.Join(dir, name))
		}
	}
	assert.ElementsMatch(t, want, backups)
}

func TestBackup_CopiesContent(t *testing.T) {
	dir := t.TempDir()
	sgPath := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(sgPath, []byte("original"), 0o644))

	target, err := Backup(sgPath, "batch-modify")
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	backups, err := FindBackups(sgPath)
	require.NoError(t, err)
	assert.Equal(t, []string{target}, backups)
}
