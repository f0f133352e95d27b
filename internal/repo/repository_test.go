package repo_test

import (
	"testing"

	"github.com/hamed0406/statuswidget/internal/repo"
	"github.com/hamed0406/statuswidget/internal/repo/file"
	"github.com/hamed0406/statuswidget/internal/repo/memory"
	pg "github.com/hamed0406/statuswidget/internal/repo/postgres"
	rd "github.com/hamed0406/statuswidget/internal/repo/redis"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.Storage = memory.New()
	var _ repo.Storage = (*file.Store)(nil)
	var _ repo.Storage = (*pg.Store)(nil)
	var _ repo.Storage = (*rd.Store)(nil)
}
