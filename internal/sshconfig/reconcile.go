package sshconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"

	apperr "sshkm/internal/error"
	"sshkm/internal/utils"
)

const DefaultFilePerms = 0600

// Reconciler merges rendered managed blocks into target files. Dry runs
// print to Stdout.
type Reconciler struct {
	Stdout io.Writer
	Log    zerolog.Logger
}

func NewReconciler(stdout io.Writer, log zerolog.Logger) *Reconciler {
	return &Reconciler{Stdout: stdout, Log: log}
}

// ApplyOptions control a write.
type ApplyOptions struct {
	DryRun   bool
	NoBackup bool
}

// ApplyResult describes what Apply did.
type ApplyResult struct {
	Path       string
	BackupPath string
	Changed    bool
	Written    bool
	DryRun     bool
}

// Diff is the line-level difference between the managed block currently in
// the target file and a freshly rendered one.
type Diff struct {
	Path        string
	Old         []string
	New         []string
	FileExists  bool
	BlockExists bool
}

// Empty reports whether regenerating would leave the block unchanged.
func (d *Diff) Empty() bool {
	return slices.Equal(d.Old, d.New)
}

// Unified renders the diff in unified format; empty when there is no
// change.
func (d *Diff) Unified() string {
	if d.Empty() {
		return ""
	}
	ud := difflib.UnifiedDiff{
		A:        withNewlines(d.Old),
		B:        withNewlines(d.New),
		FromFile: d.Path + " (current)",
		ToFile:   d.Path + " (generated)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		// only write errors are possible and the target is a buffer
		return ""
	}
	return text
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}

// readTarget returns the target content; a missing file is empty.
func readTarget(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Diff compares the managed block in path with rendered. A missing file or
// a missing or unterminated block is an empty baseline.
func (r *Reconciler) Diff(path, rendered string) (*Diff, error) {
	content, exists, err := readTarget(path)
	if err != nil {
		return nil, apperr.IO(fmt.Errorf("failed to read %s: %w", path, err))
	}

	block, err := Split(content)
	if err != nil {
		r.Log.Warn().Str("path", path).Err(err).Msg("ignoring existing managed block")
	}

	return &Diff{
		Path:        path,
		Old:         Lines(block.Managed),
		New:         Lines(rendered),
		FileExists:  exists,
		BlockExists: block.Found,
	}, nil
}

// Apply writes rendered into path, replacing the managed block and keeping
// everything around it. Unless NoBackup is set an existing target is first
// copied to path+".old". Any failure leaves the target untouched.
func (r *Reconciler) Apply(path, rendered string, opts ApplyOptions) (*ApplyResult, error) {
	if opts.DryRun {
		return r.dryRun(path, rendered)
	}

	content, exists, err := readTarget(path)
	if err != nil {
		return nil, apperr.ConfigWrite(path, err)
	}

	block, err := Split(content)
	if errors.Is(err, ErrUnterminatedBlock) {
		return nil, apperr.ConfigParse(fmt.Sprintf("%s: %s; fix or remove the stray %q line", path, err, StartMarker), nil)
	}

	result := &ApplyResult{
		Path:    path,
		Changed: !slices.Equal(Lines(block.Managed), Lines(rendered)),
	}

	if exists && !opts.NoBackup {
		backup, err := utils.BackupFile(path)
		if err != nil {
			return nil, apperr.ConfigWrite(path, err)
		}
		result.BackupPath = backup
		r.Log.Info().Str("backup", backup).Msg("backed up ssh config")
	}

	if err := utils.WriteFileAtomic(path, []byte(block.Merge(rendered)), DefaultFilePerms); err != nil {
		return nil, apperr.ConfigWrite(path, err)
	}
	result.Written = true

	r.Log.Info().Str("path", path).Bool("changed", result.Changed).Msg("wrote ssh config")
	return result, nil
}

func (r *Reconciler) dryRun(path, rendered string) (*ApplyResult, error) {
	d, err := r.Diff(path, rendered)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(r.Stdout, rendered); err != nil {
		return nil, apperr.IO(err)
	}
	return &ApplyResult{Path: path, Changed: !d.Empty(), DryRun: true}, nil
}
