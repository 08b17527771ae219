package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"golang.org/x/mod/modfile"

	"github.com/Yamashou/buildergen/codegen"
)

// DefaultFilenames are the config file names FindConfigFile looks for, in order.
var DefaultFilenames = []string{".buildergen.yml", "buildergen.yml", ".buildergen.yaml", "buildergen.yaml"}

// Config represents the config file.
type Config struct {
	Output   OutputConfig      `yaml:"output"`
	Packages []string          `yaml:"packages,omitempty"`
	GraphQL  *GraphQLConfig    `yaml:"graphql,omitempty"`
	Types    map[string]string `yaml:"types,omitempty"`
	Marker   string            `yaml:"marker,omitempty"`
	Report   string            `yaml:"report,omitempty"`

	// Dir is the directory holding the config file. Relative paths are resolved
	// against it.
	Dir string `yaml:"-"`
}

// OutputConfig は生成ファイルの出力先。
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	Package    string `yaml:"package,omitempty"`
	ImportPath string `yaml:"import_path,omitempty"`
}

// GraphQLConfig はスキーマから gqlgen のモデル用ビルダーを生成する設定。
type GraphQLConfig struct {
	Schema []string    `yaml:"schema"`
	Model  ModelConfig `yaml:"model"`
	Types  []string    `yaml:"types,omitempty"`

	// SchemaFiles are the files matched by Schema, sorted.
	SchemaFiles []string `yaml:"-"`
}

// ModelConfig は gqlgen が生成したモデルのパッケージ。
type ModelConfig struct {
	Package    string `yaml:"package,omitempty"`
	ImportPath string `yaml:"import_path"`
}

// LoadConfig loads and parses the buildergen config.
func LoadConfig(configFilename string) (*Config, error) {
	configContent, err := os.ReadFile(configFilename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	var c Config

	yamlDecoder := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(configContent)))), yaml.DisallowUnknownField())
	if err := yamlDecoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	// validation
	if len(c.Packages) == 0 && (c.GraphQL == nil || len(c.GraphQL.Schema) == 0) {
		return nil, errors.New("neither 'packages' nor 'graphql.schema' specified. Use packages to scan Go types, use graphql.schema to scan a GraphQL schema")
	}

	if c.GraphQL != nil && c.GraphQL.Model.ImportPath == "" {
		return nil, errors.New("'graphql.model.import_path' must be set when 'graphql' is specified")
	}

	c.Dir = filepath.Dir(configFilename)
	if c.Marker == "" {
		c.Marker = codegen.NotNullMarker
	}

	// output.dir は未設定でも読み込めるが、生成ラウンドの開始時にエラーになる
	if c.Output.Dir != "" {
		if !filepath.IsAbs(c.Output.Dir) {
			c.Output.Dir = filepath.Join(c.Dir, c.Output.Dir)
		}
		if c.Output.ImportPath == "" {
			importPath, err := importPathForDir(c.Output.Dir)
			if err != nil {
				return nil, fmt.Errorf("output: %w", err)
			}
			c.Output.ImportPath = importPath
		}
		if c.Output.Package == "" {
			c.Output.Package = codegen.PackageNameForPath(c.Output.ImportPath)
		}
	}

	if c.Report != "" && !filepath.IsAbs(c.Report) {
		c.Report = filepath.Join(c.Dir, c.Report)
	}

	if c.GraphQL != nil {
		if c.GraphQL.Model.Package == "" {
			c.GraphQL.Model.Package = codegen.PackageNameForPath(c.GraphQL.Model.ImportPath)
		}
		schemaFiles, err := schemaFilenames(c.Dir, c.GraphQL.Schema)
		if err != nil {
			return nil, err
		}
		c.GraphQL.SchemaFiles = schemaFiles
	}

	return &c, nil
}

// NameTable returns the built-in name table overridden by the 'types' entries.
func (c *Config) NameTable() codegen.NameTable {
	return codegen.DefaultNameTable().Merge(c.Types)
}

// FindConfigFile searches dir and its parents for the first of filenames.
func FindConfigFile(dir string, filenames []string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", dir, err)
	}

	for {
		for _, name := range filenames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("unable to find config file %v", filenames)
		}
		dir = parent
	}
}

func schemaFilenames(dir string, patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(dir, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid schema pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("schema pattern %q matched no files", pattern)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)

	return slices.Compact(files), nil
}

// importPathForDir computes the import path of dir from the closest go.mod.
func importPathForDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", dir, err)
	}

	for root := abs; ; {
		content, err := os.ReadFile(filepath.Join(root, "go.mod"))
		if err == nil {
			modulePath := modfile.ModulePath(content)
			if modulePath == "" {
				return "", fmt.Errorf("%s has no module directive", filepath.Join(root, "go.mod"))
			}
			rel, err := filepath.Rel(root, abs)
			if err != nil {
				return "", fmt.Errorf("unable to resolve %s: %w", dir, err)
			}
			if rel == "." {
				return modulePath, nil
			}
			return modulePath + "/" + filepath.ToSlash(rel), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("unable to read go.mod: %w", err)
		}

		parent := filepath.Dir(root)
		if parent == root {
			return "", fmt.Errorf("no go.mod found for %s, set import_path", dir)
		}
		root = parent
	}
}
