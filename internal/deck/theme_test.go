package deck

import "testing"

func TestResolveTheme(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"blue", "blue"},
		{"teal", "teal"},
		{"  Purple ", "purple"},
		{"", "blue"},
		{"magenta", "blue"},
	}

	for _, tt := range tests {
		got := ResolveTheme(tt.name)
		if got.Name != tt.want {
			t.Errorf("ResolveTheme(%q).Name = %q, want %q", tt.name, got.Name, tt.want)
		}
	}
}

func TestResolveThemeDistinctAccents(t *testing.T) {
	seen := map[string]string{}
	for name := range themes {
		th := ResolveTheme(name)
		if prev, dup := seen[th.Accent]; dup {
			t.Errorf("themes %q and %q share accent %s", prev, name, th.Accent)
		}
		seen[th.Accent] = name
	}
}

func TestLighten(t *testing.T) {
	tests := []struct {
		hex      string
		fraction float64
		want     string
	}{
		{"000000", 0, "000000"},
		{"000000", 1, "FFFFFF"},
		{"3B82F6", 0, "3B82F6"},
		{"3B82F6", 1, "FFFFFF"},
		{"000000", 0.5, "808080"},
		{"FF0000", 0.5, "FF8080"},
		// 超界输入钳制
		{"808080", -1, "808080"},
		{"808080", 2, "FFFFFF"},
		// 带井号前缀
		{"#000000", 1, "FFFFFF"},
	}

	for _, tt := range tests {
		got := Lighten(tt.hex, tt.fraction)
		if got != tt.want {
			t.Errorf("Lighten(%q, %v) = %q, want %q", tt.hex, tt.fraction, got, tt.want)
		}
	}
}

func TestLightenMonotonic(t *testing.T) {
	prev := -1
	for _, f := range []float64{0, 0.25, 0.5, 0.75, 1} {
		hex := Lighten("123456", f)
		r, g, b := parseHexColor(hex)
		sum := r + g + b
		if sum < prev {
			t.Fatalf("Lighten not monotonic at fraction %v: %d < %d", f, sum, prev)
		}
		prev = sum
	}
}
