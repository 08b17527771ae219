package plugins

import (
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/afero"

	"github.com/Yamashou/buildergen/codegen"
	"github.com/Yamashou/buildergen/config"
	"github.com/Yamashou/buildergen/logger"
	"github.com/Yamashou/buildergen/plugins/buildergen"
)

// Report summarizes one processing round.
type Report struct {
	Handled bool       `json:"handled"`
	Targets int        `json:"targets"`
	Written []*Written `json:"written"`
	Failed  []*Failure `json:"failed,omitempty"`
}

// Written is one builder file produced by the round.
type Written struct {
	Target  string `json:"target"`
	Builder string `json:"builder"`
	File    string `json:"file"`
}

// Failure is one target the round skipped.
type Failure struct {
	Target   string `json:"target"`
	Position string `json:"position,omitempty"`
	Error    string `json:"error"`
}

// GenerateCode runs one processing round over targets in their supplied order. A
// failing target is reported and skipped; the others are still generated. The
// round is not handled at all when no output directory is configured. The
// returned error is only about writing the report.
func GenerateCode(cfg *config.Config, targets []*codegen.Target, fs afero.Fs, reporter logger.Reporter) (*Report, error) {
	report := &Report{Targets: len(targets)}

	if cfg.Output.Dir == "" {
		reporter.Error("round not handled", codegen.ErrNoOutputRoot)
		return report, nil
	}
	report.Handled = true

	builderGen := buildergen.New(buildergen.Output{
		Dir:        cfg.Output.Dir,
		Package:    cfg.Output.Package,
		ImportPath: cfg.Output.ImportPath,
	}, cfg.NameTable(), cfg.Marker, fs, reporter)

	reporter.Note("round started", "plugin", builderGen.Name(), "targets", len(targets))

	// builders share one output package, so their names must not collide
	builders := make(map[string]string, len(targets))
	for _, target := range targets {
		artifact, err := builderGen.Generate(target)
		if err == nil {
			if other, ok := builders[artifact.Name]; ok {
				err = &codegen.ElementShapeError{Target: artifact.Target, Reason: fmt.Sprintf("%s is already generated for %s", artifact.Name, other)}
			}
		}
		if err == nil {
			err = builderGen.Write(artifact)
		}
		if err != nil {
			reporter.Error("builder not generated", err, "target", target.QualifiedName(), "position", target.Position)
			report.Failed = append(report.Failed, &Failure{
				Target:   target.QualifiedName(),
				Position: target.Position,
				Error:    err.Error(),
			})
			continue
		}

		builders[artifact.Name] = artifact.Target
		reporter.Note("builder written", "builder", artifact.Name, "file", artifact.Filename)
		report.Written = append(report.Written, &Written{
			Target:  artifact.Target,
			Builder: artifact.Name,
			File:    artifact.Filename,
		})
	}

	if cfg.Report != "" {
		if err := writeReport(fs, cfg.Report, report); err != nil {
			return report, err
		}
	}

	return report, nil
}

// OK reports whether the round was handled and every target got a builder.
func (r *Report) OK() bool {
	return r.Handled && len(r.Failed) == 0
}

// Err returns an error describing why the round is not OK, or nil.
func (r *Report) Err() error {
	switch {
	case !r.Handled:
		return codegen.ErrNoOutputRoot
	case len(r.Failed) > 0:
		errs := make([]error, 0, len(r.Failed))
		for _, failure := range r.Failed {
			errs = append(errs, errors.New(failure.Error))
		}
		return fmt.Errorf("%d of %d targets failed: %w", len(r.Failed), r.Targets, errors.Join(errs...))
	}

	return nil
}

func writeReport(fs afero.Fs, filename string, report *Report) error {
	content, err := json.Marshal(report, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := afero.WriteFile(fs, filename, append(content, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
