package profile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Load reads a saved profile file and validates it. Schema problems are
// reported on the returned Result, not as an error.
func Load(path string) (result Result, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read profile file: %s", path)
		return result, err
	}

	if !gjson.ValidBytes(data) {
		err = errors.Errorf("failed to parse profile JSON: %s", path)
		return result, err
	}

	result = Validate(data)

	meta := gjson.GetBytes(data, "metadata")
	result.Profile.Metadata = Metadata{
		SourceText: meta.Get("source_text").String(),
		Provenance: Provenance(meta.Get("provenance").String()),
	}
	if result.Profile.Metadata.Provenance == "" {
		result.Profile.Metadata.Provenance = ProvenanceFile
	}
	result.Profile.Metadata.Confidence = Estimate(result.Profile)

	return result, err
}

// Save writes a profile to path as indented JSON.
func Save(path string, p Profile) (err error) {
	var data []byte
	data, err = json.MarshalIndent(p, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal profile")
		return err
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create directory: %s", dir)
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write profile file: %s", path)
		return err
	}

	return err
}
