package outfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"

	"github.com/gubarz/mdline/internal/richtext"
)

// Format represents a structured output format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Result is the structured form of one conversion
type Result struct {
	Source string           `json:"source,omitempty" yaml:"source,omitempty"`
	HTML   string           `json:"html" yaml:"html"`
	Blocks []richtext.Block `json:"blocks" yaml:"blocks"`
}

// Printer handles formatted output
type Printer struct {
	Format Format
	Query  string // jq expression applied to JSON output
	Writer io.Writer
}

// NewPrinter creates a new printer with the given format
func NewPrinter(format string) *Printer {
	return &Printer{
		Format: Format(strings.ToLower(format)),
		Writer: os.Stdout,
	}
}

// WithQuery sets the jq filter
func (p *Printer) WithQuery(query string) *Printer {
	p.Query = query
	return p
}

// Print outputs data in the configured format
func (p *Printer) Print(data interface{}) error {
	switch p.Format {
	case FormatJSON:
		if p.Query != "" {
			return p.printQuery(data)
		}
		return p.printJSON(data)
	case FormatYAML:
		if p.Query != "" {
			return fmt.Errorf("--jq only applies to json output")
		}
		return p.printYAML(data)
	default:
		return fmt.Errorf("unsupported structured format %q", p.Format)
	}
}

func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.Writer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (p *Printer) printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(p.Writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// printQuery runs the jq expression over data and prints each result
func (p *Printer) printQuery(data interface{}) error {
	parsed, err := gojq.Parse(p.Query)
	if err != nil {
		return fmt.Errorf("invalid --jq: %w", err)
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid --jq: %w", err)
	}

	normalized, err := normalize(data)
	if err != nil {
		return err
	}

	iter := code.Run(normalized)
	enc := json.NewEncoder(p.Writer)
	enc.SetEscapeHTML(false)

	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}

	return nil
}

// normalize converts arbitrary values into the map/slice shapes gojq expects
func normalize(data interface{}) (interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return v, nil
}
