// Package atomicfile writes output files so that a failed run leaves none of them
// behind. Each file is staged as a temporary file in its target directory and only
// renamed into place once every file of the batch has been written.
package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type staged struct {
	path string
	tmp  string
}

// Batch is a set of files that are committed together
type Batch struct {
	files     []staged
	committed []string
	done      bool
}

// Add writes data to a temporary file next to path
func (b *Batch) Add(path string, data []byte) error {
	if b.done {
		return fmt.Errorf("batch already finished, cannot add %s", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	b.files = append(b.files, staged{path: path, tmp: tmp.Name()})
	return nil
}

// Len returns the number of staged files
func (b *Batch) Len() int {
	return len(b.files)
}

// Commit renames every staged file into place. If a rename fails, the files
// already renamed by this batch are removed again along with the remaining
// temporary files.
func (b *Batch) Commit() error {
	if b.done {
		return errors.New("batch already finished")
	}
	b.done = true

	for i, f := range b.files {
		if err := os.Rename(f.tmp, f.path); err != nil {
			err = fmt.Errorf("failed to write %s: %w", f.path, err)
			for _, rest := range b.files[i:] {
				os.Remove(rest.tmp)
			}
			for _, p := range b.committed {
				if rmErr := os.Remove(p); rmErr != nil {
					err = errors.Join(err, rmErr)
				}
			}
			b.committed = nil
			return err
		}
		b.committed = append(b.committed, f.path)
	}
	return nil
}

// Discard removes every staged file. It does nothing after Commit, so it can be
// deferred right after the batch is created.
func (b *Batch) Discard() {
	if b.done {
		return
	}
	b.done = true
	for _, f := range b.files {
		os.Remove(f.tmp)
	}
}

// WriteFile writes a single file atomically
func WriteFile(path string, data []byte) error {
	var b Batch
	defer b.Discard()
	if err := b.Add(path, data); err != nil {
		return err
	}
	return b.Commit()
}
