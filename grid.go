package camwatch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// NewCameraGrid creates multiple camera specs from a source template and
// dimensions using cartesian product expansion.
//
// Grids are for fleets of homogeneous cameras: multi-channel DVRs, one
// camera per floor, per building, and so on. The source template uses Go's
// text/template syntax with dimension keys as variables. Missing template
// keys cause an error (fail-fast).
//
// Each camera name joins the base name and dimension values with dashes:
// "base-val1-val2" (values from alphabetically sorted keys), producing
// valid media server path names. [WithNameTemplate] overrides this naming
// with a template of its own.
//
// Metadata is automatically populated from dimension values. Static metadata
// from [WithGridMetadata] takes precedence over dimension metadata on
// collision.
//
// Example:
//
//	specs, err := NewCameraGrid("lobby",
//	    WithSourceTemplate("rtsp://10.0.0.{{.host}}:554/ch{{.ch}}"),
//	    WithDimensions(map[string][]string{
//	        "host": {"10", "11"},
//	        "ch":   {"1", "2"},
//	    }),
//	)
//	// Returns 4 specs, usable with WithCameras(specs...)
func NewCameraGrid(baseName string, opts ...GridOption) ([]CameraSpec, error) {
	if strings.TrimSpace(baseName) == "" {
		return nil, errors.New("base name cannot be empty")
	}

	cfg := &gridConfig{
		metadata: make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.sourceTemplate == "" {
		return nil, errors.New("source template required")
	}
	if len(cfg.dimensions) == 0 {
		return nil, errors.New("at least one dimension required")
	}

	// parse templates with missingkey=error for fail-fast behaviour
	tmpl, err := template.New("source").Option("missingkey=error").Parse(cfg.sourceTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid source template: %w", err)
	}

	var nameTmpl *template.Template
	if cfg.nameTemplate != "" {
		nameTmpl, err = template.New("name").Option("missingkey=error").Parse(cfg.nameTemplate)
		if err != nil {
			return nil, fmt.Errorf("invalid name template: %w", err)
		}
	}

	combinations := cartesianProduct(cfg.dimensions)
	if len(combinations) == 0 {
		return nil, nil
	}

	specs := make([]CameraSpec, 0, len(combinations))
	for _, combo := range combinations {
		source, err := executeTemplate(tmpl, combo)
		if err != nil {
			return nil, fmt.Errorf("template execution failed: %w", err)
		}

		name := formatCameraName(baseName, combo)
		if nameTmpl != nil {
			name, err = executeTemplate(nameTmpl, combo)
			if err != nil {
				return nil, fmt.Errorf("name template execution failed: %w", err)
			}
		}

		// merge metadata: dimension first, static overrides
		metadata := mergeMaps(combo, cfg.metadata)

		specOpts := []CameraSpecOption{
			WithMetadata(flattenMap(metadata)...),
		}
		if cfg.transport != "" {
			specOpts = append(specOpts, WithTransport(cfg.transport))
		}
		if cfg.onDemand {
			specOpts = append(specOpts, WithOnDemand(true))
		}
		if cfg.startTimeout > 0 && cfg.closeAfter > 0 {
			specOpts = append(specOpts, WithOnDemandTimeouts(cfg.startTimeout, cfg.closeAfter))
		}
		if cfg.udpReadBuffer > 0 {
			specOpts = append(specOpts, WithUDPReadBuffer(cfg.udpReadBuffer))
		}

		spec, err := NewCameraSpec(name, source, specOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create camera %q: %w", name, err)
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// cartesianProduct generates all combinations of dimension values.
// Keys are sorted alphabetically for deterministic output.
// Values maintain their original slice order.
//
// Example:
//
//	Input:  {"x": ["a","b"], "y": ["1","2"]}
//	Output: [{"x":"a","y":"1"}, {"x":"a","y":"2"}, {"x":"b","y":"1"}, {"x":"b","y":"2"}]
func cartesianProduct(dims map[string][]string) []map[string]string {
	if len(dims) == 0 {
		return nil
	}

	// sort keys for deterministic iteration
	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// a dimension with no values yields no combinations
	for _, k := range keys {
		if len(dims[k]) == 0 {
			return nil
		}
	}

	total := 1
	for _, k := range keys {
		total *= len(dims[k])
	}

	result := make([]map[string]string, 0, total)

	indices := make([]int, len(keys))
	for {
		combo := make(map[string]string, len(keys))
		for i, k := range keys {
			combo[k] = dims[k][indices[i]]
		}
		result = append(result, combo)

		// increment indices (rightmost first)
		for i := len(keys) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(dims[keys[i]]) {
				break
			}
			indices[i] = 0
			if i == 0 {
				return result
			}
		}
	}
}

// executeTemplate renders the template with the given data.
func executeTemplate(tmpl *template.Template, data map[string]string) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatCameraName creates a path name in the format "base-v1-v2".
// Values are ordered by sorted keys for consistent naming.
func formatCameraName(baseName string, combo map[string]string) string {
	keys := make([]string, 0, len(combo))
	for k := range combo {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, baseName)
	for _, k := range keys {
		parts = append(parts, combo[k])
	}
	return strings.Join(parts, "-")
}

// mergeMaps merges multiple maps, with later maps taking precedence.
func mergeMaps(maps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// flattenMap converts a map to a slice of key-value pairs for variadic functions.
// Keys are sorted for deterministic output.
func flattenMap(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(m)*2)
	for _, k := range keys {
		result = append(result, k, m[k])
	}
	return result
}
