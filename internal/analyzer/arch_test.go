package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniforge/omniforge/pkg/models"
)

func sources(paths ...string) []models.SourceFile {
	files := make([]models.SourceFile, len(paths))
	for i, p := range paths {
		files[i] = models.SourceFile{Path: p}
	}
	return files
}

func TestClassifyArchitectureEmpty(t *testing.T) {
	c := ClassifyArchitecture(nil, nil)
	assert.Equal(t, models.ArchUnknown, c.Label)
	assert.Zero(t, c.Confidence)
}

func TestClassifyArchitectureMVC(t *testing.T) {
	files := sources(
		"app/models/user.py",
		"app/models/order.py",
		"app/views/user_view.py",
		"app/controllers/user_controller.py",
		"app/templates/user.html",
	)

	c := ClassifyArchitecture(files, nil)
	assert.Equal(t, models.ArchMVC, c.Label)
	assert.Greater(t, c.Confidence, 0.0)
	assert.LessOrEqual(t, c.Confidence, 1.0)
	assert.NotEmpty(t, c.Signals)
}

func TestClassifyArchitectureMicroservices(t *testing.T) {
	files := sources(
		"docker-compose.yml",
		"auth/Dockerfile",
		"auth/main.go",
		"billing/Dockerfile",
		"billing/main.go",
		"gateway/Dockerfile",
		"gateway/main.go",
	)

	c := ClassifyArchitecture(files, nil)
	assert.Equal(t, models.ArchMicroservices, c.Label)
	assert.Greater(t, c.Confidence, 0.5)
}

func TestClassifyArchitectureMonolithic(t *testing.T) {
	files := sources(
		"go.mod",
		"src/a.go",
		"src/b.go",
		"src/c.go",
		"src/d.go",
		"src/e.go",
	)

	c := ClassifyArchitecture(files, nil)
	assert.Equal(t, models.ArchMonolithic, c.Label)
}

func TestClassifyArchitectureLayeredSharedModules(t *testing.T) {
	files := sources(
		"api/handler.py",
		"services/billing.py",
		"repository/store.py",
		"common/log.py",
		"common/cfg.py",
	)
	edges := []models.DependencyEdge{
		{Source: "api/handler.py", Target: "common.log", Kind: models.DependencyInternal, ResolvedPath: "common/log.py"},
		{Source: "services/billing.py", Target: "common.log", Kind: models.DependencyInternal, ResolvedPath: "common/log.py"},
		{Source: "repository/store.py", Target: "common.log", Kind: models.DependencyInternal, ResolvedPath: "common/log.py"},
		{Source: "api/handler.py", Target: "common.cfg", Kind: models.DependencyInternal, ResolvedPath: "common/cfg.py"},
		{Source: "services/billing.py", Target: "common.cfg", Kind: models.DependencyInternal, ResolvedPath: "common/cfg.py"},
		{Source: "repository/store.py", Target: "common.cfg", Kind: models.DependencyInternal, ResolvedPath: "common/cfg.py"},
	}

	c := ClassifyArchitecture(files, edges)
	assert.Equal(t, models.ArchLayered, c.Label)
}

func TestClassifyArchitectureDeterministic(t *testing.T) {
	files := sources(
		"docker-compose.yml",
		"svc1/Dockerfile",
		"svc1/app.py",
		"svc2/Dockerfile",
		"svc2/app.py",
		"models/user.py",
		"views/page.py",
		"controllers/ctl.py",
	)

	first := ClassifyArchitecture(files, nil)
	for i := 0; i < 5; i++ {
		again := ClassifyArchitecture(files, nil)
		require.Equal(t, first, again)
	}
}

func TestClassifyConfidenceBounds(t *testing.T) {
	files := sources("components/button.tsx", "components/form.tsx", "package.json")
	c := ClassifyArchitecture(files, nil)
	assert.GreaterOrEqual(t, c.Confidence, 0.0)
	assert.LessOrEqual(t, c.Confidence, 1.0)
}
