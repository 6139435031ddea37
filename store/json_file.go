package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// JSONExt is the extension of resource files in the data directory.
const JSONExt = ".json"

// JsonFilePersister stores each resource as a separate JSON file on disk.
//
// Layout:
//
//	data_dir/
//	  users.json   # "users" resource
//	  posts.json   # "posts" resource
type JsonFilePersister struct {
	dir    string
	logger *slog.Logger
}

func NewJsonFilePersister(dir string, logger *slog.Logger) (*JsonFilePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &JsonFilePersister{dir: dir, logger: logger}, nil
}

func (p *JsonFilePersister) resourcePath(resource string) string {
	return filepath.Join(p.dir, resource+JSONExt)
}

// Load reads every *.json file in the directory. A file that cannot be read
// or parsed is logged and loaded as an empty resource.
func (p *JsonFilePersister) Load() (map[string][]Record, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]Record)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, JSONExt) {
			continue
		}
		resource := strings.TrimSuffix(name, JSONExt)
		result[resource] = p.loadFile(filepath.Join(p.dir, name))
	}
	return result, nil
}

func (p *JsonFilePersister) loadFile(path string) []Record {
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("failed to read resource file", "path", path, "err", err)
		return []Record{}
	}
	records, err := DecodeRecords(data)
	if err != nil {
		p.logger.Warn("failed to parse resource file", "path", path, "err", err)
		return []Record{}
	}
	return records
}

// Save overwrites the resource file with the pretty-printed collection.
func (p *JsonFilePersister) Save(resource string, records []Record) error {
	b, err := EncodeRecords(records)
	if err != nil {
		return err
	}
	return os.WriteFile(p.resourcePath(resource), b, 0o644)
}

func (p *JsonFilePersister) Close() error {
	return nil
}
