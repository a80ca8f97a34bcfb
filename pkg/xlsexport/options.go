package xlsexport

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Option configures a Builder at construction.
type Option func(*Builder)

// WithHeaderFormat merges format into the header style.
func WithHeaderFormat(format Format) Option {
	return func(b *Builder) {
		b.SetHeaderFormat(format)
	}
}

// WithI18nScope sets the scope used to translate column labels.
func WithI18nScope(scope ...string) Option {
	return func(b *Builder) {
		b.SetI18nScope(scope...)
	}
}

// WithTranslator sets the translation table used when an i18n scope is set.
func WithTranslator(t Translator) Option {
	return func(b *Builder) {
		b.translator = t
	}
}

// WithSheetName names the exported sheet. Default is Sheet1.
func WithSheetName(name string) Option {
	return func(b *Builder) {
		if name != "" {
			b.sheetName = name
		}
	}
}

// WithDocument replaces the document encoder. Default is NewWorkbook.
func WithDocument(factory DocumentFactory) Option {
	return func(b *Builder) {
		if factory != nil {
			b.newDocument = factory
		}
	}
}

// OptionsFromMap converts a loosely typed option bag into Options.
// Recognized keys are header_format, i18n_scope and sheet_name. Unknown keys
// and nil values are ignored.
func OptionsFromMap(values map[string]interface{}) []Option {
	var opts []Option
	for key, value := range values {
		if value == nil {
			continue
		}
		switch key {
		case "header_format":
			if f, ok := toFormat(value); ok {
				opts = append(opts, WithHeaderFormat(f))
			}
		case "i18n_scope":
			if scope, ok := toScope(value); ok {
				opts = append(opts, WithI18nScope(scope...))
			}
		case "sheet_name":
			opts = append(opts, WithSheetName(fmt.Sprint(value)))
		}
	}
	return opts
}

func toFormat(v interface{}) (Format, bool) {
	switch f := v.(type) {
	case Format:
		return f, true
	case map[string]interface{}:
		return Format(f), true
	case map[interface{}]interface{}:
		out := make(Format, len(f))
		for k, val := range f {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// toScope accepts a string slice, a generic slice or a dotted string such as
// "xls.post".
func toScope(v interface{}) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []interface{}:
		out := make([]string, len(s))
		for i, part := range s {
			out[i] = fmt.Sprint(part)
		}
		return out, true
	case string:
		return strings.Split(s, "."), true
	}
	return nil, false
}

// Options is the declarative form of a builder configuration, as found in
// YAML export files.
type Options struct {
	HeaderFormat  Format   `yaml:"header_format"`
	I18nScope     []string `yaml:"i18n_scope"`
	SkipHeader    bool     `yaml:"skip_header"`
	OnlyColumns   []string `yaml:"only_columns"`
	DeleteColumns []string `yaml:"delete_columns"`
	SheetName     string   `yaml:"sheet_name"`
}

// LoadOptions decodes YAML options. Unknown keys are ignored.
func LoadOptions(data []byte) (Options, error) {
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("decode yaml: %w", err)
	}
	return o, nil
}

// LoadOptionsFile reads YAML options from path.
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	return LoadOptions(data)
}

// Configure applies o to b. Column whitelisting runs before deletions.
func (o Options) Configure(b *Builder) {
	if len(o.HeaderFormat) > 0 {
		b.SetHeaderFormat(o.HeaderFormat)
	}
	if len(o.I18nScope) > 0 {
		b.SetI18nScope(o.I18nScope...)
	}
	if o.SheetName != "" {
		b.sheetName = o.SheetName
	}
	if o.SkipHeader {
		b.SkipHeader()
	}
	if len(o.OnlyColumns) > 0 {
		b.OnlyColumns(o.OnlyColumns...)
	}
	if len(o.DeleteColumns) > 0 {
		b.DeleteColumns(o.DeleteColumns...)
	}
}
