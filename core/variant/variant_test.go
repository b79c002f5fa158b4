package variant

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/table"
)

func TestPaletteColor(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		unit   string
		want   string
		wantOK bool
	}{
		{"亜紗花［紅蓮の剣］", "F8C7C7", true},
		{"ジャンヌ［聖女］", "BFD6F6", true},
		{"ミッドウェー［水着］", "E5C0F4", true},
		{"テルティア［叡理欲す意象］", "FEE3C1", true},
		{"テルティア［未知］", "", false},
		{"名無し［誰か］", "", false},
		{"亜紗花", "", false},
		{"|BGCOLOR(#fff):亜紗花［x］", "", false},
	}
	for _, tt := range tests {
		got, ok := p.Color(tt.unit)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Color(%q) = %q, %v, want %q, %v", tt.unit, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette([]byte("elements:\n  - name: fire\n    color: '#ff0000'\n    characters: [A]\n"))
	if err != nil {
		t.Fatalf("ParsePalette failed: %v", err)
	}
	if got, _ := p.Color("A［b］"); got != "ff0000" {
		t.Errorf("Color = %q, want ff0000", got)
	}

	_, err = ParsePalette([]byte("elements:\n  - name: fire\n    characters: [A]\n"))
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("ParsePalette() error = %v, want ErrInvalidInput", err)
	}
}

func TestIconVariant(t *testing.T) {
	v := NewIcon(DefaultPalette())
	id, ok := v.UnitName(table.Columns("|&ref(x);| [[亜紗花［紅蓮の剣］]] |火|"))
	if !ok {
		t.Fatal("UnitName should find column 2")
	}
	want := "BGCOLOR(#F8C7C7):[[&ref(img/亜紗花［紅蓮の剣］_icon.png,80x80);>亜紗花［紅蓮の剣］]]"
	if got := v.RenderUnit(id); got != want {
		t.Errorf("RenderUnit() = %q, want %q", got, want)
	}

	if got := v.RenderUnit("無名"); got != "[[&ref(img/無名_icon.png,80x80);>無名]]" {
		t.Errorf("RenderUnit() without color = %q", got)
	}

	if _, ok := v.UnitName([]string{"", "A"}); ok {
		t.Error("UnitName should fail on a short row")
	}
}

func TestPlainVariant(t *testing.T) {
	v := NewPlain()
	tests := []struct {
		line string
		want string
	}{
		{"|RED:ゆきかぜ|x|SR:アタッカー|", "SR:ゆきかぜ"},
		{"|アスカ|x|SSR|", "SSR:アスカ"},
		{"|アスカ|", "アスカ"},
	}
	for _, tt := range tests {
		got, ok := v.UnitName(table.Columns(tt.line))
		if !ok || got != tt.want {
			t.Errorf("UnitName(%q) = %q, %v, want %q", tt.line, got, ok, tt.want)
		}
	}
	if got := v.RenderUnit("SR:アスカ"); got != "SR:アスカ" {
		t.Errorf("RenderUnit() = %q", got)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"plain", "icon", "taimanin", "tonofura"} {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
		}
	}
	if _, err := Get("nope"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get(nope) error = %v, want ErrNotFound", err)
	}
	if diff := cmp.Diff([]string{"icon", "plain"}, Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
