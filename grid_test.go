package camwatch

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Cartesian Product Tests
// =============================================================================

func TestCartesianProduct_TwoDimensions(t *testing.T) {
	dims := map[string][]string{
		"x": {"a", "b"},
		"y": {"1", "2"},
	}

	result := cartesianProduct(dims)

	if len(result) != 4 {
		t.Fatalf("cartesianProduct() returned %d combinations, want 4", len(result))
	}

	// verify sorted key order (x, y) and preserved value order
	expected := []map[string]string{
		{"x": "a", "y": "1"},
		{"x": "a", "y": "2"},
		{"x": "b", "y": "1"},
		{"x": "b", "y": "2"},
	}

	for i, want := range expected {
		if result[i]["x"] != want["x"] || result[i]["y"] != want["y"] {
			t.Errorf("combination[%d] = %v, want %v", i, result[i], want)
		}
	}
}

func TestCartesianProduct_SingleDimension(t *testing.T) {
	dims := map[string][]string{
		"ch": {"1", "2", "3"},
	}

	result := cartesianProduct(dims)

	if len(result) != 3 {
		t.Fatalf("cartesianProduct() returned %d combinations, want 3", len(result))
	}

	// verify order preserved
	expected := []string{"1", "2", "3"}
	for i, want := range expected {
		if result[i]["ch"] != want {
			t.Errorf("combination[%d][ch] = %v, want %v", i, result[i]["ch"], want)
		}
	}
}

func TestCartesianProduct_ThreeDimensions(t *testing.T) {
	dims := map[string][]string{
		"a": {"1", "2"},
		"b": {"x", "y"},
		"c": {"p", "q"},
	}

	result := cartesianProduct(dims)

	if len(result) != 8 {
		t.Fatalf("cartesianProduct() returned %d combinations, want 8 (2x2x2)", len(result))
	}

	// verify first combination uses sorted key order (a, b, c)
	first := result[0]
	if first["a"] != "1" || first["b"] != "x" || first["c"] != "p" {
		t.Errorf("first combination = %v, want {a:1, b:x, c:p}", first)
	}
}

func TestCartesianProduct_EmptyDimension(t *testing.T) {
	dims := map[string][]string{
		"x": {},
	}

	result := cartesianProduct(dims)

	if len(result) != 0 {
		t.Errorf("cartesianProduct() with empty dimension returned %d combinations, want 0", len(result))
	}
}

func TestCartesianProduct_EmptyMap(t *testing.T) {
	dims := map[string][]string{}

	result := cartesianProduct(dims)

	if len(result) != 0 {
		t.Errorf("cartesianProduct() with empty map returned %d combinations, want 0", len(result))
	}
}

func TestCartesianProduct_DeterministicOrder(t *testing.T) {
	dims := map[string][]string{
		"z": {"3", "4"},
		"a": {"1", "2"},
	}

	// run 100 times and verify identical output
	var first []map[string]string
	for i := 0; i < 100; i++ {
		result := cartesianProduct(dims)
		if first == nil {
			first = result
			continue
		}

		if len(result) != len(first) {
			t.Fatalf("iteration %d: length changed from %d to %d", i, len(first), len(result))
		}

		for j := range first {
			if result[j]["a"] != first[j]["a"] || result[j]["z"] != first[j]["z"] {
				t.Fatalf("iteration %d: combination[%d] differs: %v vs %v", i, j, result[j], first[j])
			}
		}
	}
}

func TestCartesianProduct_PreservesValueOrder(t *testing.T) {
	// values are NOT in alphabetical order
	dims := map[string][]string{
		"site": {"warehouse", "office", "annex"},
	}

	result := cartesianProduct(dims)

	if len(result) != 3 {
		t.Fatalf("cartesianProduct() returned %d combinations, want 3", len(result))
	}

	// should preserve slice order, not sort values
	expected := []string{"warehouse", "office", "annex"}
	for i, want := range expected {
		if result[i]["site"] != want {
			t.Errorf("value order not preserved: combination[%d][site] = %v, want %v", i, result[i]["site"], want)
		}
	}
}

// =============================================================================
// Grid Options Tests
// =============================================================================

func TestWithSourceTemplate_Valid(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithSourceTemplate("rtsp://dvr{{.dvr}}.internal:554/ch{{.ch}}")

	if err := opt(cfg); err != nil {
		t.Fatalf("WithSourceTemplate() error = %v", err)
	}

	if cfg.sourceTemplate != "rtsp://dvr{{.dvr}}.internal:554/ch{{.ch}}" {
		t.Errorf("sourceTemplate = %v, want template string", cfg.sourceTemplate)
	}
}

func TestWithSourceTemplate_Empty(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithSourceTemplate("")

	err := opt(cfg)
	if err == nil {
		t.Error("WithSourceTemplate(\"\") expected error, got nil")
	}
}

func TestWithNameTemplate_Valid(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithNameTemplate("floor{{.floor}}-cam{{.ch}}")

	if err := opt(cfg); err != nil {
		t.Fatalf("WithNameTemplate() error = %v", err)
	}

	if cfg.nameTemplate != "floor{{.floor}}-cam{{.ch}}" {
		t.Errorf("nameTemplate = %v, want template string", cfg.nameTemplate)
	}
}

func TestWithNameTemplate_Empty(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithNameTemplate("")

	err := opt(cfg)
	if err == nil {
		t.Error("WithNameTemplate(\"\") expected error, got nil")
	}
}

func TestWithDimensions_Valid(t *testing.T) {
	cfg := &gridConfig{}
	dims := map[string][]string{
		"dvr": {"1", "2"},
		"ch":  {"1", "2", "3", "4"},
	}
	opt := WithDimensions(dims)

	if err := opt(cfg); err != nil {
		t.Fatalf("WithDimensions() error = %v", err)
	}

	if len(cfg.dimensions) != 2 {
		t.Errorf("dimensions count = %d, want 2", len(cfg.dimensions))
	}
}

func TestWithDimensions_Empty(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithDimensions(map[string][]string{})

	err := opt(cfg)
	if err == nil {
		t.Error("WithDimensions({}) expected error, got nil")
	}
}

func TestWithDimensions_EmptyValues(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithDimensions(map[string][]string{
		"ch": {},
	})

	err := opt(cfg)
	if err == nil {
		t.Error("WithDimensions with empty values expected error, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "ch") {
		t.Errorf("error should mention dimension name 'ch', got: %v", err)
	}
}

func TestWithDimensions_EmptyStringValue(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithDimensions(map[string][]string{
		"ch": {"1", "", "3"},
	})

	err := opt(cfg)
	if err == nil {
		t.Error("WithDimensions with empty string value expected error, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "empty value") {
		t.Errorf("error should mention 'empty value', got: %v", err)
	}
}

func TestWithGridMetadata_Valid(t *testing.T) {
	cfg := &gridConfig{metadata: make(map[string]string)}
	opt := WithGridMetadata("site", "warehouse", "tier", "critical")

	if err := opt(cfg); err != nil {
		t.Fatalf("WithGridMetadata() error = %v", err)
	}

	if cfg.metadata["site"] != "warehouse" {
		t.Errorf("metadata[site] = %v, want warehouse", cfg.metadata["site"])
	}
	if cfg.metadata["tier"] != "critical" {
		t.Errorf("metadata[tier] = %v, want critical", cfg.metadata["tier"])
	}
}

func TestWithGridMetadata_OddArgs(t *testing.T) {
	cfg := &gridConfig{metadata: make(map[string]string)}
	opt := WithGridMetadata("site", "warehouse", "orphan")

	err := opt(cfg)
	if err == nil {
		t.Error("WithGridMetadata with odd args expected error, got nil")
	}
}

func TestWithGridMetadata_Empty(t *testing.T) {
	cfg := &gridConfig{metadata: make(map[string]string)}
	opt := WithGridMetadata()

	if err := opt(cfg); err != nil {
		t.Errorf("WithGridMetadata() with no args should not error, got: %v", err)
	}
}

func TestWithGridTransport_Valid(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithGridTransport("udp")

	if err := opt(cfg); err != nil {
		t.Fatalf("WithGridTransport() error = %v", err)
	}

	if cfg.transport != "udp" {
		t.Errorf("transport = %v, want udp", cfg.transport)
	}
}

func TestWithGridTransport_Invalid(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithGridTransport("quic")

	err := opt(cfg)
	if err == nil {
		t.Error("WithGridTransport(\"quic\") expected error, got nil")
	}
}

func TestWithGridOnDemandTimeouts_Valid(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithGridOnDemandTimeouts(20*time.Second, 30*time.Second)

	if err := opt(cfg); err != nil {
		t.Fatalf("WithGridOnDemandTimeouts() error = %v", err)
	}

	if cfg.startTimeout != 20*time.Second {
		t.Errorf("startTimeout = %v, want 20s", cfg.startTimeout)
	}
	if cfg.closeAfter != 30*time.Second {
		t.Errorf("closeAfter = %v, want 30s", cfg.closeAfter)
	}
}

func TestWithGridOnDemandTimeouts_Invalid(t *testing.T) {
	cfg := &gridConfig{}

	if err := WithGridOnDemandTimeouts(0, 30*time.Second)(cfg); err == nil {
		t.Error("WithGridOnDemandTimeouts(0, 30s) expected error, got nil")
	}
	if err := WithGridOnDemandTimeouts(20*time.Second, -1)(cfg); err == nil {
		t.Error("WithGridOnDemandTimeouts(20s, -1) expected error, got nil")
	}
}

func TestWithGridUDPReadBuffer_Negative(t *testing.T) {
	cfg := &gridConfig{}
	opt := WithGridUDPReadBuffer(-1)

	err := opt(cfg)
	if err == nil {
		t.Error("WithGridUDPReadBuffer(-1) expected error, got nil")
	}
}

// =============================================================================
// NewCameraGrid Core Tests
// =============================================================================

func TestNewCameraGrid_Basic(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.{{.host}}:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"host": {"10", "11"},
			"ch":   {"1", "2"},
		}),
	)

	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}

	if len(specs) != 4 {
		t.Errorf("NewCameraGrid() returned %d specs, want 4", len(specs))
	}

	// verify all names are unique
	names := make(map[string]bool)
	for _, spec := range specs {
		if names[spec.Name()] {
			t.Errorf("duplicate camera name: %s", spec.Name())
		}
		names[spec.Name()] = true
	}
}

func TestNewCameraGrid_SingleDimension(t *testing.T) {
	specs, err := NewCameraGrid("hall",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1", "2", "3"},
		}),
	)

	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}

	if len(specs) != 3 {
		t.Errorf("NewCameraGrid() returned %d specs, want 3", len(specs))
	}
}

func TestNewCameraGrid_SourceRendering(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.{{.host}}.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"host": {"1"},
			"ch":   {"2"},
		}),
	)

	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}

	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}

	want := "rtsp://10.0.1.5:554/ch2"
	if specs[0].Source() != want {
		t.Errorf("Source() = %v, want %v", specs[0].Source(), want)
	}
}

func TestNewCameraGrid_CameraNaming(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.{{.host}}:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"host": {"10"},
			"ch":   {"1"},
		}),
	)
	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}

	// values ordered by sorted keys (ch, host) in the name
	want := "lobby-1-10"
	if specs[0].Name() != want {
		t.Errorf("Name() = %v, want %v", specs[0].Name(), want)
	}
}

func TestNewCameraGrid_NameTemplate(t *testing.T) {
	specs, err := NewCameraGrid("floor",
		WithSourceTemplate("rtsp://10.0.{{.floor}}.5:554/ch{{.ch}}"),
		WithNameTemplate("floor{{.floor}}-cam{{.ch}}"),
		WithDimensions(map[string][]string{
			"floor": {"1", "2"},
			"ch":    {"1"},
		}),
	)
	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}

	names := make(map[string]bool)
	for _, spec := range specs {
		names[spec.Name()] = true
	}
	if !names["floor1-cam1"] || !names["floor2-cam1"] {
		t.Errorf("names = %v, want floor1-cam1 and floor2-cam1", names)
	}
}

func TestNewCameraGrid_NameTemplateMissingKey(t *testing.T) {
	_, err := NewCameraGrid("floor",
		WithSourceTemplate("rtsp://10.0.{{.floor}}.5:554/main"),
		WithNameTemplate("floor{{.level}}"),
		WithDimensions(map[string][]string{
			"floor": {"1"},
		}),
	)

	if err == nil {
		t.Error("NewCameraGrid() with missing name template key expected error, got nil")
	}
}

func TestNewCameraGrid_DimensionMetadata(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.{{.host}}:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"host": {"10"},
			"ch":   {"1"},
		}),
	)
	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}

	md := specs[0].Metadata()
	if md["host"] != "10" {
		t.Errorf("Metadata()[host] = %v, want '10'", md["host"])
	}
	if md["ch"] != "1" {
		t.Errorf("Metadata()[ch] = %v, want '1'", md["ch"])
	}
}

func TestNewCameraGrid_StaticMetadata(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1"},
		}),
		WithGridMetadata("site", "warehouse"),
	)
	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}

	md := specs[0].Metadata()
	if md["site"] != "warehouse" {
		t.Errorf("Metadata()[site] = %v, want 'warehouse'", md["site"])
	}
}

func TestNewCameraGrid_StaticMetadataOverridesDimensions(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1"},
		}),
		WithGridMetadata("ch", "override"),
	)
	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}

	md := specs[0].Metadata()
	// static metadata should override dimension metadata
	if md["ch"] != "override" {
		t.Errorf("Metadata()[ch] = %v, want 'override' (static should win)", md["ch"])
	}
}

func TestNewCameraGrid_SharedTransport(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1", "2"},
		}),
		WithGridTransport("udp"),
	)
	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}

	for i, spec := range specs {
		if spec.Transport() != "udp" {
			t.Errorf("spec[%d].Transport() = %v, want udp", i, spec.Transport())
		}
	}
}

func TestNewCameraGrid_SharedOnDemand(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1", "2"},
		}),
		WithGridOnDemand(true),
		WithGridOnDemandTimeouts(20*time.Second, 30*time.Second),
	)
	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}

	for i, spec := range specs {
		if !spec.OnDemand() {
			t.Errorf("spec[%d].OnDemand() = false, want true", i)
		}
		if spec.OnDemandStartTimeout() != 20*time.Second {
			t.Errorf("spec[%d].OnDemandStartTimeout() = %v, want 20s", i, spec.OnDemandStartTimeout())
		}
		if spec.OnDemandCloseAfter() != 30*time.Second {
			t.Errorf("spec[%d].OnDemandCloseAfter() = %v, want 30s", i, spec.OnDemandCloseAfter())
		}
	}
}

func TestNewCameraGrid_SharedUDPReadBuffer(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1"},
		}),
		WithGridTransport("udp"),
		WithGridUDPReadBuffer(1048576),
	)
	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}

	if specs[0].UDPReadBuffer() != 1048576 {
		t.Errorf("UDPReadBuffer() = %d, want 1048576", specs[0].UDPReadBuffer())
	}
}

func TestNewCameraGrid_ComposableWithMonitor(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1", "2"},
		}),
	)

	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}

	// should be usable with WithCameras
	m, err := New(WithCameras(specs...))
	if err != nil {
		t.Fatalf("New(WithCameras(...)) error = %v", err)
	}

	if m == nil {
		t.Error("New() returned nil Monitor")
	}
	if len(m.DeclaredCameras()) != 2 {
		t.Errorf("len(DeclaredCameras()) = %d, want 2", len(m.DeclaredCameras()))
	}
}

func TestNewCameraGrid_MissingTemplate(t *testing.T) {
	_, err := NewCameraGrid("lobby",
		WithDimensions(map[string][]string{
			"ch": {"1"},
		}),
	)

	if err == nil {
		t.Error("NewCameraGrid() without source template expected error, got nil")
	}
}

func TestNewCameraGrid_MissingDimensions(t *testing.T) {
	_, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/main"),
	)

	if err == nil {
		t.Error("NewCameraGrid() without dimensions expected error, got nil")
	}
}

func TestNewCameraGrid_InvalidTemplateSyntax(t *testing.T) {
	_, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch"),
		WithDimensions(map[string][]string{
			"ch": {"1"},
		}),
	)

	if err == nil {
		t.Error("NewCameraGrid() with invalid template expected error, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "template") {
		t.Errorf("error should mention 'template', got: %v", err)
	}
}

func TestNewCameraGrid_TemplateMissingKey(t *testing.T) {
	_, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.missing}}"),
		WithDimensions(map[string][]string{
			"ch": {"1"},
		}),
	)

	if err == nil {
		t.Error("NewCameraGrid() with missing template key expected error, got nil")
	}
}

func TestNewCameraGrid_OptionError(t *testing.T) {
	_, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/main"),
		WithDimensions(map[string][]string{}), // will error
	)

	if err == nil {
		t.Error("NewCameraGrid() with failing option expected error, got nil")
	}
}

// =============================================================================
// Edge Cases & Error Handling Tests
// =============================================================================

func TestNewCameraGrid_TemplateWithConditional(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate(`{{if eq .zone "secure"}}rtsps{{else}}rtsp{{end}}://10.0.0.5:554/main`),
		WithDimensions(map[string][]string{
			"zone": {"secure", "public"},
		}),
	)
	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}

	// secure zone should use rtsps
	if !strings.HasPrefix(specs[0].Source(), "rtsps://") {
		t.Errorf("secure camera source should start with rtsps://, got: %s", specs[0].Source())
	}

	// public zone should use rtsp
	if !strings.HasPrefix(specs[1].Source(), "rtsp://") || strings.HasPrefix(specs[1].Source(), "rtsps://") {
		t.Errorf("public camera source should start with rtsp://, got: %s", specs[1].Source())
	}
}

func TestNewCameraGrid_InvalidGeneratedName(t *testing.T) {
	// a dimension value with a space produces an invalid path name
	_, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1 2"},
		}),
	)

	if err == nil {
		t.Error("NewCameraGrid() with whitespace in generated name expected error, got nil")
	}
}

func TestNewCameraGrid_InvalidGeneratedSource(t *testing.T) {
	// template renders a scheme the media server cannot pull from
	_, err := NewCameraGrid("lobby",
		WithSourceTemplate("ftp://10.0.0.5/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1"},
		}),
	)

	if err == nil {
		t.Error("NewCameraGrid() with unsupported source scheme expected error, got nil")
	}
}

func TestNewCameraGrid_EmptyBaseName(t *testing.T) {
	_, err := NewCameraGrid("",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1"},
		}),
	)

	if err == nil {
		t.Error("NewCameraGrid() with empty base name expected error, got nil")
	}
}

func TestNewCameraGrid_WhitespaceBaseName(t *testing.T) {
	_, err := NewCameraGrid("   ",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"1"},
		}),
	)

	if err == nil {
		t.Error("NewCameraGrid() with whitespace base name expected error, got nil")
	}
}

func TestNewCameraGrid_SingleValueSingleDimension(t *testing.T) {
	specs, err := NewCameraGrid("lobby",
		WithSourceTemplate("rtsp://10.0.0.5:554/ch{{.ch}}"),
		WithDimensions(map[string][]string{
			"ch": {"only"},
		}),
	)
	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}
}

func TestNewCameraGrid_LargeDimensions(t *testing.T) {
	// 10 x 10 x 10 = 1000 cameras
	vals := make([]string, 10)
	for i := 0; i < 10; i++ {
		vals[i] = string(rune('0' + i))
	}

	specs, err := NewCameraGrid("wall",
		WithSourceTemplate("rtsp://10.{{.a}}.{{.b}}.{{.c}}:554/main"),
		WithDimensions(map[string][]string{
			"a": vals,
			"b": vals,
			"c": vals,
		}),
	)

	if err != nil {
		t.Fatalf("NewCameraGrid() error = %v", err)
	}

	if len(specs) != 1000 {
		t.Errorf("expected 1000 specs, got %d", len(specs))
	}

	// verify no duplicate names
	names := make(map[string]bool)
	for _, spec := range specs {
		if names[spec.Name()] {
			t.Errorf("duplicate camera name: %s", spec.Name())
		}
		names[spec.Name()] = true
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkCartesianProduct_Small(b *testing.B) {
	dims := map[string][]string{
		"x": {"1", "2", "3"},
		"y": {"a", "b", "c"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cartesianProduct(dims)
	}
}

func BenchmarkCartesianProduct_Large(b *testing.B) {
	vals := make([]string, 10)
	for i := 0; i < 10; i++ {
		vals[i] = string(rune('0' + i))
	}

	dims := map[string][]string{
		"x": vals,
		"y": vals,
		"z": vals,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cartesianProduct(dims)
	}
}

func BenchmarkNewCameraGrid_1000Cameras(b *testing.B) {
	vals := make([]string, 10)
	for i := 0; i < 10; i++ {
		vals[i] = string(rune('0' + i))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = NewCameraGrid("wall",
			WithSourceTemplate("rtsp://10.{{.a}}.{{.b}}.{{.c}}:554/main"),
			WithDimensions(map[string][]string{
				"a": vals,
				"b": vals,
				"c": vals,
			}),
		)
	}
}
