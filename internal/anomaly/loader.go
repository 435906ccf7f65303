package anomaly

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"pagsusi/internal/logger"
)

// Decode reads an array-of-objects document into a Dataset. Values are taken as-is;
// only malformed JSON is rejected.
func Decode(r io.Reader, source string) (*Dataset, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records from %s: %w", source, err)
	}
	d := NewDataset(records, source)
	unknown := 0
	for _, rec := range records {
		if !rec.Priority.Valid() {
			unknown++
		}
	}
	if unknown > 0 {
		logger.L().Warn("records_unknown_priority", "source", source, "count", unknown)
	}
	logger.L().Debug("records_decoded", "source", source, "count", d.Len(), "digest", d.Digest())
	return d, nil
}

// LoadFile reads the static data file once.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()
	return Decode(f, "file:"+path)
}
