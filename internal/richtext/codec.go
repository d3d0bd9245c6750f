package richtext

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/starford/notebook/internal/apperr"
)

const formatVersion = 1

type envelope struct {
	Version int   `json:"v"`
	Runs    []Run `json:"runs"`
}

// Validate reports structural problems that would make d unsafe to store.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("richtext: nil document: %w", apperr.ErrSerialization)
	}
	for i, r := range d.Runs {
		if r.IsMarker() && r.Text != "" {
			return fmt.Errorf("richtext: run %d: marker carries text: %w", i, apperr.ErrSerialization)
		}
		if !utf8.ValidString(r.Text) {
			return fmt.Errorf("richtext: run %d: invalid utf-8: %w", i, apperr.ErrSerialization)
		}
		if strings.ContainsRune(r.Text, Marker) {
			return fmt.Errorf("richtext: run %d: stray marker rune: %w", i, apperr.ErrSerialization)
		}
		if r.Style.Size < 0 || math.IsNaN(r.Style.Size) || math.IsInf(r.Style.Size, 0) {
			return fmt.Errorf("richtext: run %d: bad size %v: %w", i, r.Style.Size, apperr.ErrSerialization)
		}
	}
	return nil
}

// Marshal validates and encodes d.
func Marshal(d *Document) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(envelope{Version: formatVersion, Runs: d.Runs})
	if err != nil {
		return nil, fmt.Errorf("richtext: encode: %v: %w", err, apperr.ErrSerialization)
	}
	return data, nil
}

// Unmarshal decodes and validates a document produced by Marshal.
func Unmarshal(data []byte) (*Document, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("richtext: decode: %v: %w", err, apperr.ErrSerialization)
	}
	if env.Version != formatVersion {
		return nil, fmt.Errorf("richtext: unsupported version %d: %w", env.Version, apperr.ErrSerialization)
	}
	d := &Document{Runs: env.Runs}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// FromText builds a title-styled document from plain text.
func FromText(text string, th Theme) *Document {
	text = newlines.Replace(text)
	text = strings.ReplaceAll(text, string(Marker), "")
	return ApplyTitleStyle(fromCells(textCells(text, Style{Size: th.BaseSize})), th)
}
