package renderer

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteArtifact writes an artifact into dir and returns its path.
func WriteArtifact(dir string, artifact Artifact) (path string, err error) {
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", dir)
		return path, err
	}

	path = filepath.Join(dir, filepath.Base(artifact.Filename))
	err = os.WriteFile(path, artifact.Data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write %s file: %s", artifact.Kind, path)
		return path, err
	}

	return path, err
}

// WriteArtifacts writes each artifact into dir, stopping at the first failure.
func WriteArtifacts(dir string, artifacts ...Artifact) (paths []string, err error) {
	for _, artifact := range artifacts {
		var path string
		path, err = WriteArtifact(dir, artifact)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, err
}

// RemoveArtifacts deletes previously written files, ignoring ones already gone.
func RemoveArtifacts(paths ...string) (err error) {
	for _, path := range paths {
		err = os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			err = errors.Wrapf(err, "failed to remove file: %s", path)
			return err
		}
		err = nil
	}
	return err
}
