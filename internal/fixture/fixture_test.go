package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestAspidFixtures runs every .aspid program under testdata/fixtures and
// checks its captured stdout against a go-snaps snapshot, grounded on the
// teacher's TestDWScriptFixtures harness in internal/interp/fixture_test.go.
// Unlike the teacher's fixtures (paired .pas/.txt files per category),
// Aspid's categories are plain directories of .aspid programs with no
// paired expected-output file — go-snaps owns the golden copy.
func TestAspidFixtures(t *testing.T) {
	root := "../../testdata/fixtures"
	categories, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("reading fixtures root: %v", err)
	}

	for _, cat := range categories {
		if !cat.IsDir() {
			continue
		}
		cat := cat
		t.Run(cat.Name(), func(t *testing.T) {
			files, err := filepath.Glob(filepath.Join(root, cat.Name(), "*.aspid"))
			if err != nil {
				t.Fatalf("globbing %s: %v", cat.Name(), err)
			}
			if len(files) == 0 {
				t.Skipf("no .aspid fixtures in %s", cat.Name())
			}

			for _, path := range files {
				path := path
				name := strings.TrimSuffix(filepath.Base(path), ".aspid")
				t.Run(name, func(t *testing.T) {
					source, err := os.ReadFile(path)
					if err != nil {
						t.Fatalf("reading %s: %v", path, err)
					}

					result := Run(string(source), "", 1)

					var sb strings.Builder
					sb.WriteString(result.Output)
					for _, d := range result.Diagnostics {
						sb.WriteString("diagnostic: ")
						sb.WriteString(d)
						sb.WriteString("\n")
					}
					if result.RuntimeError != "" {
						sb.WriteString("runtime error: ")
						sb.WriteString(result.RuntimeError)
						sb.WriteString("\n")
					}

					snaps.MatchSnapshot(t, sb.String())
				})
			}
		})
	}
}
