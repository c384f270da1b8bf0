package config

import (
	_ "embed"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/photo-report/internal/constants"
)

//go:embed variants.yaml
var variantsYAML []byte

type Config struct {
	Report   ReportConfig
	Web      WebConfig
	Variants VariantsConfig
}

type ReportConfig struct {
	Variant        string // preset name from variants.yaml (defaults to "field")
	TargetBytes    int    // byte budget per compressed photo
	MaxDimension   int    // longest side after the downscale pre-pass
	PerPage        int    // photos per page, 1 or 2
	SoftLimitBytes int    // estimated document size that requires confirmation
	Concurrency    int    // parallel compression workers for warm-up
}

type WebConfig struct {
	Port              int
	Host              string
	SessionTTLMinutes int
	AllowedOrigins    []string // CORS origins besides localhost
}

type VariantsConfig struct {
	Variants map[string]Variant `yaml:"variants"`
}

// Variant is one report flavour: header and folio labels, date format and the tunables
// that differ between the original application variants.
type Variant struct {
	Label       string            `yaml:"label"`
	DateFormat  string            `yaml:"date_format"`
	PageLabel   string            `yaml:"page_label"`
	Compression CompressionPreset `yaml:"compression"`
	Layout      LayoutPreset      `yaml:"layout"`
}

type CompressionPreset struct {
	QualityLow     float64 `yaml:"quality_low"`
	QualityHigh    float64 `yaml:"quality_high"`
	QualityStart   float64 `yaml:"quality_start"`
	Iterations     int     `yaml:"iterations"`
	ShrinkFactor   float64 `yaml:"shrink_factor"`
	FloorDimension int     `yaml:"floor_dimension"`
}

type LayoutPreset struct {
	Margin          float64 `yaml:"margin"`
	HeaderHeight    float64 `yaml:"header_height"`
	FooterHeight    float64 `yaml:"footer_height"`
	SlotGap         float64 `yaml:"slot_gap"`
	CaptionReserve  float64 `yaml:"caption_reserve"`
	CaptionGap      float64 `yaml:"caption_gap"`
	CaptionInset    float64 `yaml:"caption_inset"`
	BorderInset     float64 `yaml:"border_inset"`
	BorderLineWidth float64 `yaml:"border_line_width"`
	CaptionFontSize float64 `yaml:"caption_font_size"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString returns the env var value or the default when unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated env var, dropping blank entries.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var variants VariantsConfig
	if err := yaml.Unmarshal(variantsYAML, &variants); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded variants.yaml: " + err.Error())
	}

	return &Config{
		Report: ReportConfig{
			Variant:        envString("REPORT_VARIANT", constants.DefaultVariant),
			TargetBytes:    envInt("REPORT_TARGET_BYTES", constants.DefaultTargetBytes),
			MaxDimension:   envInt("REPORT_MAX_DIMENSION", constants.MaxImageDimension),
			PerPage:        envInt("REPORT_PER_PAGE", constants.DefaultPerPage),
			SoftLimitBytes: envInt("REPORT_SOFT_LIMIT_BYTES", constants.SoftDocumentLimitBytes),
			Concurrency:    envInt("REPORT_CONCURRENCY", constants.DefaultConcurrency),
		},
		Web: WebConfig{
			Port:              envInt("WEB_PORT", 8080),
			Host:              envString("WEB_HOST", "0.0.0.0"),
			SessionTTLMinutes: envInt("WEB_SESSION_TTL_MINUTES", constants.DefaultSessionTTLMinutes),
			AllowedOrigins:    envList("WEB_ALLOWED_ORIGINS"),
		},
		Variants: variants,
	}
}

// GetVariant returns the named preset and whether it exists.
func (c *Config) GetVariant(name string) (Variant, bool) {
	v, ok := c.Variants.Variants[name]
	return v, ok
}

// VariantNames returns the preset names in alphabetical order.
func (c *Config) VariantNames() []string {
	names := make([]string, 0, len(c.Variants.Variants))
	for name := range c.Variants.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
