package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// resolverProject builds a project tree with a docs directory that uses
// every layout trick the strategies cover.
func resolverProject(t *testing.T) (projectRoot, docsRoot string) {
	t.Helper()
	projectRoot = t.TempDir()
	docsRoot = filepath.Join(projectRoot, "docs")

	writeFile(t, filepath.Join(projectRoot, "CHANGELOG.md"), "changes\n")
	writeFile(t, filepath.Join(projectRoot, "src", "mylib", "core.py"), "x = 1\n")
	writeFile(t, filepath.Join(docsRoot, "index.md"), "home\n")
	writeFile(t, filepath.Join(docsRoot, "guide.md"), "guide\n")
	writeFile(t, filepath.Join(docsRoot, "a", "b", "page.md"), "nested\n")
	writeFile(t, filepath.Join(docsRoot, "examples", "notebook_a.ipynb"), "{}")
	writeFile(t, filepath.Join(docsRoot, "examples", "other_nb.ipynb"), "{}")
	writeFile(t, filepath.Join(docsRoot, "examples", "page.md"), "examples\n")
	writeFile(t, filepath.Join(docsRoot, "examples", "both.md"), "page wins\n")
	writeFile(t, filepath.Join(docsRoot, "examples", "both.ipynb"), "{}")
	writeFile(t, filepath.Join(docsRoot, "tutorials", "intro.md"), "intro\n")
	writeFile(t, filepath.Join(docsRoot, "tutorials", "zeta.md"), "zeta\n")
	writeFile(t, filepath.Join(docsRoot, "assets", "logo.txt"), "logo\n")

	return projectRoot, docsRoot
}

func TestResolveDirectRelative(t *testing.T) {
	projectRoot, docsRoot := resolverProject(t)

	resolved, ok := Resolve(Request{
		Path:        "guide.md",
		Dir:         docsRoot,
		SourceFile:  filepath.Join(docsRoot, "index.md"),
		DocsRoot:    docsRoot,
		ProjectRoot: projectRoot,
	})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(docsRoot, "guide.md"), resolved)

	t.Run("subdirectory target", func(t *testing.T) {
		resolved, ok := Resolve(Request{
			Path:        "examples/notebook_a.ipynb",
			Dir:         docsRoot,
			SourceFile:  filepath.Join(docsRoot, "index.md"),
			DocsRoot:    docsRoot,
			ProjectRoot: projectRoot,
		})
		require.True(t, ok)
		assert.Equal(t, filepath.Join(docsRoot, "examples", "notebook_a.ipynb"), resolved)
	})

	t.Run("directory target", func(t *testing.T) {
		_, ok := Resolve(Request{
			Path:        "examples",
			Dir:         docsRoot,
			SourceFile:  filepath.Join(docsRoot, "index.md"),
			DocsRoot:    docsRoot,
			ProjectRoot: projectRoot,
		})
		assert.True(t, ok)
	})
}

func TestResolveDocsRootTraversal(t *testing.T) {
	projectRoot, docsRoot := resolverProject(t)

	resolved, ok := Resolve(Request{
		Path:        "../CHANGELOG.md",
		Dir:         filepath.Join(docsRoot, "a", "b"),
		SourceFile:  filepath.Join(docsRoot, "a", "b", "page.md"),
		DocsRoot:    docsRoot,
		ProjectRoot: projectRoot,
	})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(projectRoot, "CHANGELOG.md"), resolved)
}

func TestResolveProjectAbsolute(t *testing.T) {
	projectRoot, docsRoot := resolverProject(t)

	resolved, ok := Resolve(Request{
		Path:        "/src/mylib/core.py",
		Dir:         docsRoot,
		SourceFile:  filepath.Join(docsRoot, "index.md"),
		DocsRoot:    docsRoot,
		ProjectRoot: projectRoot,
	})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(projectRoot, "src", "mylib", "core.py"), resolved)
}

func TestResolveURLStyle(t *testing.T) {
	projectRoot, docsRoot := resolverProject(t)
	examples := filepath.Join(docsRoot, "examples")

	t.Run("notebook link probes the notebook extension", func(t *testing.T) {
		resolved, ok := Resolve(Request{
			Path:         "../other_nb",
			Dir:          examples,
			SourceFile:   filepath.Join(examples, "notebook_a.ipynb"),
			FromNotebook: true,
			DocsRoot:     docsRoot,
			ProjectRoot:  projectRoot,
		})
		require.True(t, ok)
		assert.Equal(t, filepath.Join(examples, "other_nb.ipynb"), resolved)
	})

	t.Run("page extension is probed first", func(t *testing.T) {
		resolved, ok := Resolve(Request{
			Path:         "../both",
			Dir:          examples,
			SourceFile:   filepath.Join(examples, "notebook_a.ipynb"),
			FromNotebook: true,
			DocsRoot:     docsRoot,
			ProjectRoot:  projectRoot,
		})
		require.True(t, ok)
		assert.Equal(t, filepath.Join(examples, "both.md"), resolved)
	})

	t.Run("page link never probes the notebook extension", func(t *testing.T) {
		_, ok := Resolve(Request{
			Path:        "../other_nb",
			Dir:         examples,
			SourceFile:  filepath.Join(examples, "page.md"),
			DocsRoot:    docsRoot,
			ProjectRoot: projectRoot,
		})
		assert.False(t, ok)
	})

	t.Run("extensionful target one virtual level up", func(t *testing.T) {
		tutorials := filepath.Join(docsRoot, "tutorials")
		resolved, ok := Resolve(Request{
			Path:        "../intro.md",
			Dir:         tutorials,
			SourceFile:  filepath.Join(tutorials, "zeta.md"),
			DocsRoot:    docsRoot,
			ProjectRoot: projectRoot,
		})
		require.True(t, ok)
		assert.Equal(t, filepath.Join(tutorials, "intro.md"), resolved)
	})

	t.Run("docstring text has no source file", func(t *testing.T) {
		assets := filepath.Join(docsRoot, "assets")
		resolved, ok := Resolve(Request{
			Path:        "../logo.txt",
			Dir:         assets,
			DocsRoot:    docsRoot,
			ProjectRoot: projectRoot,
		})
		require.True(t, ok)
		assert.Equal(t, filepath.Join(assets, "logo.txt"), resolved)
	})
}

func TestResolveMiss(t *testing.T) {
	projectRoot, docsRoot := resolverProject(t)

	_, ok := Resolve(Request{
		Path:        "missing.md",
		Dir:         docsRoot,
		SourceFile:  filepath.Join(docsRoot, "index.md"),
		DocsRoot:    docsRoot,
		ProjectRoot: projectRoot,
	})
	assert.False(t, ok)

	t.Run("bare target without a virtual level", func(t *testing.T) {
		_, ok := Resolve(Request{
			Path:        "guide",
			Dir:         docsRoot,
			SourceFile:  filepath.Join(docsRoot, "index.md"),
			DocsRoot:    docsRoot,
			ProjectRoot: projectRoot,
		})
		assert.False(t, ok)
	})
}
