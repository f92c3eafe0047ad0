package offline

import (
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/kvv-bao/profiler/internal/core/profiletree"
)

const stdio = "-"

func open(path string) (io.ReadCloser, error) {
	if path == stdio {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func readJSON(path string, dest any) error {
	r, err := open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := json.NewDecoder(r).Decode(dest); err != nil {
		return errors.Wrapf(err, "failed to decode %s", path)
	}
	return nil
}

func writeJSON(path string, w io.Writer, v any) error {
	if path != stdio {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ReadRecords reads a JSON array of historical records from path, or from stdin for "-".
func ReadRecords(path string) ([]profiletree.HistoricalRecord, error) {
	var records []profiletree.HistoricalRecord
	if err := readJSON(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ReadTree reads an audit document from path and rebuilds its tree.
func ReadTree(path string) (*profiletree.ProfileTree, error) {
	var doc profiletree.Document
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	return profiletree.FromDocument(&doc)
}
