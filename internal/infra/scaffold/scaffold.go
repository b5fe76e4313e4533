package scaffold

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
	"github.com/aalvaropc/pdu-exporter/internal/ports"
)

//go:embed all:templates
var templatesFS embed.FS

// Scaffolder writes a starter config file and dotenv template into a directory.
type Scaffolder struct{}

func New() *Scaffolder {
	return &Scaffolder{}
}

var _ ports.ConfigScaffolder = (*Scaffolder)(nil)

// Scaffold copies the embedded templates into dir and returns the paths it
// wrote. Existing files are kept unless force is set.
func (s *Scaffolder) Scaffold(dir string, force bool) ([]string, error) {
	root := filepath.Clean(dir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, scaffoldError("scaffold.mkdir", root, err)
	}

	var written []string
	err := fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, "templates/")
		dst := filepath.Join(root, rel)

		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				return nil
			}
		}

		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dst, b, 0o644); err != nil {
			return scaffoldError("scaffold.write", dst, err)
		}
		written = append(written, dst)
		return nil
	})
	if err != nil {
		return written, err
	}

	if err := ensureGitignore(root); err != nil {
		return written, scaffoldError("scaffold.gitignore", filepath.Join(root, ".gitignore"), err)
	}
	return written, nil
}

func scaffoldError(op, path string, err error) error {
	return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: path, Err: err}
}

func ensureGitignore(root string) error {
	const header = "# pdu-exporter"
	entries := []string{
		".env",
		"snapshots/",
		"*.log",
	}

	path := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lines := append([]string{header}, entries...)
			lines = append(lines, "")
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
		}
		return err
	}

	existing := string(b)
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			present[trimmed] = true
		}
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var out strings.Builder
	out.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out.WriteByte('\n')
	}
	if !present[header] {
		out.WriteString(header)
		out.WriteByte('\n')
	}
	for _, e := range missing {
		out.WriteString(e)
		out.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(out.String()), 0o644)
}
