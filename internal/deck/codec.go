package deck

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ContentType returns the media type used when serving a deck in f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "application/yaml"
}

// Ext is the file extension written for f.
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".yaml"
}

// ParseFormat accepts "yaml", "yml" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported deck format %q", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer deck format from %q", path)
	}
	return ParseFormat(ext)
}

// FormatFromContentType picks the format from a request Content-Type. Unknown
// or missing types fall back to YAML, which also accepts JSON documents.
func FormatFromContentType(ct string) Format {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return FormatYAML
	}
	if mt == "application/json" || strings.HasSuffix(mt, "+json") {
		return FormatJSON
	}
	return FormatYAML
}

// Unmarshal decodes a deck document and validates it.
func Unmarshal(data []byte, f Format) (*Deck, error) {
	var d Deck
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &d)
	default:
		err = yaml.Unmarshal(data, &d)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s deck: %w", f, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Marshal encodes d in format f.
func Marshal(d *Deck, f Format) ([]byte, error) {
	if f == FormatJSON {
		return json.MarshalIndent(d, "", "  ")
	}
	return yaml.Marshal(d)
}

// Read decodes at most maxBytes from r. Larger documents are rejected.
func Read(r io.Reader, f Format, maxBytes int64) (*Deck, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("deck exceeds %d bytes", maxBytes)
	}
	return Unmarshal(bytes.TrimSpace(data), f)
}

// Load reads a deck file from fs, choosing the format by extension.
func Load(fs afero.Fs, path string, maxBytes int64) (*Deck, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file, f, maxBytes)
}

// Save writes d to path on fs, choosing the format by extension.
func Save(fs afero.Fs, path string, d *Deck) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(d, f)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return afero.WriteFile(fs, path, data, 0o644)
}
