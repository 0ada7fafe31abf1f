package config

import (
	"context"
	"path/filepath"

	yaml "github.com/goccy/go-yaml"
)

type baseDirKey struct{}

// WithBaseDir returns a context under which CfgPath values decode relative
// to dir.
func WithBaseDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, baseDirKey{}, dir)
}

func baseDir(ctx context.Context) string {
	dir, _ := ctx.Value(baseDirKey{}).(string)
	return dir
}

// CfgPath is a path from the config file. Relative paths are joined onto the
// directory of the file being parsed.
type CfgPath string

func (c *CfgPath) UnmarshalYAML(ctx context.Context, b []byte) error {
	var path string
	if err := yaml.Unmarshal(b, &path); err != nil {
		return err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir(ctx), path)
	}
	*c = CfgPath(path)
	return nil
}
