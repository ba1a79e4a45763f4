package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tamasfe/mosaic/pkg/errs"
)

// Index is notified around batches of writes, e.g. to pause reacting
// to file changes while documents are written.
type Index interface {
	StartBatch()
	StopBatch()
}

type nopIndex struct{}

func (nopIndex) StartBatch() {}
func (nopIndex) StopBatch()  {}

// Writer writes artifacts into a directory.
type Writer struct {
	// Dir is the output directory.
	Dir string

	// AllowedRoot, if set, is the directory Dir must be inside of.
	AllowedRoot string

	// CreateDir creates Dir if it doesn't exist.
	CreateDir bool

	Index Index

	// Resolve decides about kept blocks that are no longer generated,
	// they are dropped if nil.
	Resolve KeepResolver

	// Overwrite is asked before an existing file is replaced,
	// files are always replaced if nil.
	Overwrite func(path string) (bool, error)

	Logger *zap.Logger
}

// Write writes every artifact that was generated without errors and
// returns the paths written.
//
// A failing artifact doesn't stop the others, the errors of all failed
// artifacts are returned together.
func (w *Writer) Write(artifacts []*Artifact) ([]string, error) {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dir, err := w.checkDir()
	if err != nil {
		return nil, err
	}

	index := w.Index
	if index == nil {
		index = nopIndex{}
	}

	index.StartBatch()
	defer index.StopBatch()

	var (
		written []string
		failed  []error
	)

	for _, a := range artifacts {
		if a == nil || a.Err != nil {
			continue
		}

		p := filepath.Join(dir, a.FileName)

		ok, err := w.writeFile(p, []byte(a.Text))
		if err != nil {
			logger.Error("failed to write artifact", zap.String("path", p), zap.Error(err))
			failed = append(failed, &errs.FilesystemError{Path: p, Err: err})
			continue
		}
		if !ok {
			logger.Info("artifact skipped", zap.String("path", p))
			continue
		}

		logger.Debug("artifact written", zap.String("path", p))
		written = append(written, p)
	}

	return written, errors.Join(failed...)
}

func (w *Writer) checkDir() (string, error) {
	if strings.TrimSpace(w.Dir) == "" {
		return "", &errs.ConfigurationError{Reason: "the output directory is missing"}
	}

	dir, err := filepath.Abs(w.Dir)
	if err != nil {
		return "", &errs.ConfigurationError{Path: w.Dir, Reason: err.Error()}
	}

	if w.AllowedRoot != "" {
		root, err := filepath.Abs(w.AllowedRoot)
		if err != nil {
			return "", &errs.ConfigurationError{Path: w.AllowedRoot, Reason: err.Error()}
		}

		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", &errs.ConfigurationError{
				Path:   w.Dir,
				Reason: fmt.Sprintf(`the output directory is outside of "%v"`, w.AllowedRoot),
			}
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", &errs.ConfigurationError{Path: w.Dir, Reason: err.Error()}
		}
		if !w.CreateDir {
			return "", &errs.ConfigurationError{Path: w.Dir, Reason: "the output directory doesn't exist"}
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return "", &errs.ConfigurationError{Path: w.Dir, Reason: fmt.Sprintf("failed to create directory: %v", err)}
		}
		return dir, nil
	}

	if !info.IsDir() {
		return "", &errs.ConfigurationError{Path: w.Dir, Reason: "the output path is not a directory"}
	}

	return dir, nil
}

// writeFile writes a single file keeping the kept blocks of the existing one.
func (w *Writer) writeFile(path string, generated []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to read existing file: %w", err)
		}
		existing = nil
	} else if w.Overwrite != nil {
		cont, err := w.Overwrite(path)
		if err != nil {
			return false, err
		}
		if !cont {
			return false, nil
		}
	}

	out, obsolete, err := mergeKeep(path, existing, generated, w.Resolve)
	if err != nil {
		return false, err
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return false, fmt.Errorf("failed to write to file: %w", err)
	}

	if len(obsolete) > 0 {
		postNum := 0
		for {
			bkFileNamePath := path + ".old" + strconv.Itoa(postNum)
			if _, err := os.Stat(bkFileNamePath); err == nil {
				postNum++
				continue
			}

			if err := os.WriteFile(bkFileNamePath, obsolete, 0o644); err != nil {
				return false, fmt.Errorf("failed to write to file: %w", err)
			}
			break
		}
	}

	return true, nil
}
