package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/Yamashou/buildergen/config"
	"github.com/Yamashou/buildergen/logger"
)

// normalize drops formatting differences so that the comparison is about tokens.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func Test_IntegrationTest(t *testing.T) {
	t.Parallel()

	type want struct {
		// generated file -> file holding the expected content
		files  map[string]string
		failed []string
	}
	tests := []struct {
		name    string
		testDir string
		want    want
	}{
		{
			name:    "Go の構造体から生成したビルダーが examples/person と一致する",
			testDir: "examples/person/",
			want: want{
				files: map[string]string{
					"person_builder_gen.go":  "person_builder_gen.go",
					"address_builder_gen.go": "address_builder_gen.go",
					"empty_builder_gen.go":   "empty_builder_gen.go",
				},
			},
		},
		{
			name:    "GraphQL スキーマから生成し、enum は失敗として報告する",
			testDir: "testdata/graphql/",
			want: want{
				files: map[string]string{
					"gen/user_builder_gen.go": "want/user_builder_gen.go.txt",
				},
				failed: []string{"example.com/app/graph/model.Role"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.LoadConfig(filepath.Join(tt.testDir, ".buildergen.yml"))
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}

			// reads come from disk, writes stay in memory
			fs := afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(afero.NewOsFs()), afero.NewMemMapFs())

			report, err := generate(context.Background(), cfg, fs, logger.New(nil))
			if err != nil {
				t.Fatalf("generate() error = %v", err)
			}
			if !report.Handled {
				t.Fatal("round was not handled")
			}

			var failed []string
			for _, failure := range report.Failed {
				failed = append(failed, failure.Target)
			}
			if diff := cmp.Diff(tt.want.failed, failed); diff != "" {
				t.Errorf("failed targets diff(-want +got): %s", diff)
			}

			for generated, wantFile := range tt.want.files {
				got, err := afero.ReadFile(fs, filepath.Join(tt.testDir, generated))
				if err != nil {
					t.Errorf("%s is not generated: %v", generated, err)
					continue
				}
				want, err := os.ReadFile(filepath.Join(tt.testDir, wantFile))
				if err != nil {
					t.Fatalf("failed to read %s: %v", wantFile, err)
				}
				if diff := cmp.Diff(normalize(string(want)), normalize(string(got))); diff != "" {
					t.Errorf("%s diff(-want +got): %s", generated, diff)
				}
			}
		})
	}
}

func TestNewRootCmd_version(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got, want := out.String(), "buildergen v"+version+"\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
