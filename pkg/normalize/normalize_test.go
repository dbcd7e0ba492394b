package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  Key
	}{
		{"Button", "button"},
		{"BUTTON", "button"},
		{"Botón", "boton"},
		{"Diseño", "diseno"},
		{"DISEÑO", "diseno"},
		{"Crème Brûlée", "creme brulee"},
		{"Søk", "sok"},
		{"Łódź", "lodz"},
		{"Button / State=Hover", "button / state=hover"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	names := []string{
		"Button",
		"Botón",
		"ÑANDÚ",
		"Größe=L",
		"Icon / Arrow ←",
		"mixed Ünïcödé Names",
		"Ørsted",
	}

	for _, name := range names {
		once := Normalize(name)
		twice := Normalize(once.String())
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", name, once, twice)
		}
	}
}

func TestNormalizeASCIIUnaffectedBeyondCase(t *testing.T) {
	names := []string{"card", "nav-bar", "size=lg, state=default", "icon/24"}
	for _, name := range names {
		if got := Normalize(name); got.String() != name {
			t.Errorf("Normalize(%q) = %q, want unchanged", name, got)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("Botón", "boton") {
		t.Error("Equal(Botón, boton) = false, want true")
	}
	if Equal("Button", "Boton") {
		t.Error("Equal(Button, Boton) = true, want false")
	}
}
