package theme

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name, setting, want string
	}{
		{"auto", "light", "flexoki-light"},
		{"auto", "dark", "flexoki-dark"},
		{"", "light", "flexoki-light"},
		{"", "", "flexoki-dark"},
		{"terminal", "light", "terminal"},
		{"no-such-theme", "light", "flexoki-dark"},
	}
	for _, tt := range tests {
		if got := Resolve(tt.name, tt.setting).Name; got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.name, tt.setting, got, tt.want)
		}
	}
}

func TestNamesStartWithAuto(t *testing.T) {
	names := Names()
	if names[0] != Auto {
		t.Fatalf("Names()[0] = %q, want %q", names[0], Auto)
	}
	if len(names) != len(All)+1 {
		t.Fatalf("len(Names()) = %d, want %d", len(names), len(All)+1)
	}
}
