package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
	"time"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

// ValidateDir checks the migrations in dir, or the embedded set when dir is
// empty; see validateFS.
func ValidateDir(dir string) error {
	if dir == "" {
		sub, err := fs.Sub(embedded, embeddedDir)
		if err != nil {
			return fmt.Errorf("open embedded migrations: %w", err)
		}
		return validateFS(sub)
	}
	return validateFS(os.DirFS(dir))
}

// validateFS enforces what goose and CreateSQLMigration assume: parseable
// timestamp versions, unique versions and names, both goose sections and
// balanced statement blocks. Up must come before Down.
func validateFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	versions := map[string]string{}
	names := map[string]string{}

	for _, e := range entries {
		file := e.Name()
		if e.IsDir() || path.Ext(file) != ".sql" {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(file)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", file)
		}
		version, name := m[1], m[2]
		if _, err := time.Parse(versionLayout, version); err != nil {
			return fmt.Errorf("migration %q has an impossible timestamp version", file)
		}
		if prev, ok := versions[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, file)
		}
		versions[version] = file
		if prev, ok := names[name]; ok {
			return fmt.Errorf("duplicate migration name %q in %q and %q", name, prev, file)
		}
		names[name] = file

		b, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("read file %q: %w", file, err)
		}
		if err := checkBody(file, string(b)); err != nil {
			return err
		}
	}
	return nil
}

func checkBody(file, txt string) error {
	up := strings.Index(txt, "-- +goose Up")
	down := strings.Index(txt, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Up\"", file)
	case down < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Down\"", file)
	case down < up:
		return fmt.Errorf("migration %q declares Down before Up", file)
	}
	begins := strings.Count(txt, "-- +goose StatementBegin")
	ends := strings.Count(txt, "-- +goose StatementEnd")
	if begins != ends {
		return fmt.Errorf("migration %q has %d StatementBegin but %d StatementEnd", file, begins, ends)
	}
	return nil
}
