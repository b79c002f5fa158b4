package pattern

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractColumnIndex(t *testing.T) {
	tests := []struct {
		src    string
		want   int
		wantOK bool
	}{
		{`^(?:[^|]*\|){3}ABC[^|]*(?=\|)`, 3, true},
		{`^(?:[^|]*\|){12}[^|]*攻撃[^|]*(?=\|)`, 12, true},
		{`^(?:[^|]*\|){0}ABC`, 0, false},
		{`火属性`, 0, false},
		{`^(?:[^|]*\|){x}`, 0, false},
	}
	for _, tt := range tests {
		got, ok := ExtractColumnIndex(tt.src)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExtractColumnIndex(%q) = %d, %v, want %d, %v", tt.src, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestExtractPurePattern(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`^(?:[^|]*\|){3}ABC[^|]*(?=\|)`, `ABC`},
		{`^(?:[^|]*\|){6}[^|]*火[^|]*(?=\|)`, `火`},
		{`^(?:[^|]*\|){7}[^|]*(攻撃|防御).{1}UP[^|]*(?=\|)`, `(攻撃|防御).{1}UP`},
		{`火属性`, `火属性`},
	}
	for _, tt := range tests {
		if got := ExtractPurePattern(tt.src); got != tt.want {
			t.Errorf("ExtractPurePattern(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestStripSystemRows(t *testing.T) {
	src := ComposeFilter(`火属性`)
	if got := StripSystemRows(src); got != `火属性` {
		t.Errorf("StripSystemRows(%q) = %q, want 火属性", src, got)
	}
}

func TestDecompose(t *testing.T) {
	f, err := Decompose(`^(?:[^|]*\|){3}ABC[^|]*(?=\|)`)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if f.Kind != Column || f.Column != 3 || f.Pure.String() != "ABC" {
		t.Errorf("Decompose = {%v %d %q}, want {column 3 \"ABC\"}", f.Kind, f.Column, f.Pure.String())
	}

	f, err = Decompose(ComposeFilter(`水`))
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if f.Kind != WholeRow || f.Pure.String() != "水" {
		t.Errorf("Decompose = {%v %q}, want whole-row 水", f.Kind, f.Pure.String())
	}

	if _, err := Decompose(`(unclosed`); err == nil {
		t.Error("Decompose should fail on an uncompilable whole-row source")
	}
}

func TestSplitAlternatives(t *testing.T) {
	tests := []struct {
		src    string
		want   []string
		wantOK bool
	}{
		{`a|b`, []string{"a", "b"}, true},
		{`^#sort|\|h$|^}}`, []string{`^#sort`, `\|h$`, `^}}`}, true},
		{`(a|b)|c`, []string{`(a|b)`, `c`}, true},
		{`[|]x|y`, []string{`[|]x`, `y`}, true},
		{`[^]|]x|y`, []string{`[^]|]x`, `y`}, true},
		{`^(?:[^|]*\|){3}A[^|]*(?=\|)`, []string{`^(?:[^|]*\|){3}A[^|]*(?=\|)`}, true},
		{`(a|b`, nil, false},
		{`a)|b`, nil, false},
	}
	for _, tt := range tests {
		got, ok := SplitAlternatives(tt.src)
		if ok != tt.wantOK {
			t.Errorf("SplitAlternatives(%q) ok = %v, want %v", tt.src, ok, tt.wantOK)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("SplitAlternatives(%q) mismatch (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestParseFilter(t *testing.T) {
	t.Run("column anchored", func(t *testing.T) {
		f, err := ParseFilter(ComposeColumnFilter(5, "火"))
		if err != nil {
			t.Fatalf("ParseFilter failed: %v", err)
		}
		if f.Kind != Column || f.Column != 5 || f.Pure.String() != "火" {
			t.Errorf("ParseFilter = {%v %d %q}, want {column 5 \"火\"}", f.Kind, f.Column, f.Pure.String())
		}
	})

	t.Run("bare column anchor", func(t *testing.T) {
		f, err := ParseFilter(`^(?:[^|]*\|){3}ABC[^|]*(?=\|)`)
		if err != nil {
			t.Fatalf("ParseFilter failed: %v", err)
		}
		if f.Kind != Column || f.Column != 3 || f.Pure.String() != "^(?:ABC)" {
			t.Errorf("ParseFilter = {%v %d %q}, want {column 3 \"^(?:ABC)\"}", f.Kind, f.Column, f.Pure.String())
		}
		if _, ok := f.Match("|a|B|ABCD|x|"); !ok {
			t.Error("Match() should accept a cell starting with ABC")
		}
	})

	t.Run("column anchor without padding stays at the cell start", func(t *testing.T) {
		f, err := ParseFilter(`^(?:[^|]*\|){3}火`)
		if err != nil {
			t.Fatalf("ParseFilter failed: %v", err)
		}
		if f.Kind != Column || f.Column != 3 {
			t.Fatalf("ParseFilter = {%v %d}, want column 3", f.Kind, f.Column)
		}
		if m, ok := f.Match("|a|B|大火|x|"); ok {
			t.Errorf("Match(大火) = %q, true, want no match", m)
		}
		if m, ok := f.Match("|a|B|火炎|x|"); !ok || m != "火" {
			t.Errorf("Match(火炎) = %q, %v, want 火, true", m, ok)
		}
	})

	t.Run("bare lookahead closes the cell", func(t *testing.T) {
		f, err := ParseFilter(`^(?:[^|]*\|){3}[^|]*火(?=\|)`)
		if err != nil {
			t.Fatalf("ParseFilter failed: %v", err)
		}
		if _, ok := f.Match("|a|B|大火|x|"); !ok {
			t.Error("Match(大火) should match a cell ending in 火")
		}
		if _, ok := f.Match("|a|B|火炎|x|"); ok {
			t.Error("Match(火炎) should not match a cell that continues after 火")
		}
	})

	t.Run("whole row", func(t *testing.T) {
		f, err := ParseFilter(ComposeFilter(`攻撃力.{1}UP`))
		if err != nil {
			t.Fatalf("ParseFilter failed: %v", err)
		}
		if f.Kind != WholeRow || f.Pure.String() != `攻撃力.{1}UP` {
			t.Errorf("ParseFilter = {%v %q}, want whole-row", f.Kind, f.Pure.String())
		}
	})

	t.Run("several columns", func(t *testing.T) {
		src := ComposeFilter(ColumnPattern(6, "回復") + "|" + ColumnPattern(7, "回復"))
		f, err := ParseFilter(src)
		if err != nil {
			t.Fatalf("ParseFilter failed: %v", err)
		}
		if f.Kind != AnyOf || len(f.Alts) != 2 || f.Alts[1].Column != 7 {
			t.Fatalf("ParseFilter = %+v, want any-of over columns 6 and 7", f)
		}
		if m, ok := f.Match("|a|b|c|d|e|f|HP回復30%|"); !ok || m != "回復" {
			t.Errorf("Match() = %q, %v, want 回復, true", m, ok)
		}
	})

	t.Run("system rows only", func(t *testing.T) {
		f, err := ParseFilter(`^#sort|\|h$|\|f$|\|c$|^}}`)
		if err != nil {
			t.Fatalf("ParseFilter failed: %v", err)
		}
		if _, ok := f.Match("|anything|"); ok {
			t.Error("a filter with no data alternatives should match nothing")
		}
	})

	t.Run("bad pattern", func(t *testing.T) {
		if _, err := ParseFilter(ComposeFilter(`[abc`)); err == nil {
			t.Error("ParseFilter should fail on an unterminated class")
		}
	})
}

func TestFilterMatch(t *testing.T) {
	line := "|A|火属性|攻撃力20%UP|防御力10～15%UP|"

	col := NewColumn(3, MustCompile(`攻撃力[0-9]+%`))
	if m, ok := col.Match(line); !ok || m != "攻撃力20%" {
		t.Errorf("column Match() = %q, %v, want 攻撃力20%%, true", m, ok)
	}

	outOfRange := NewColumn(9, MustCompile(`.`))
	if _, ok := outOfRange.Match(line); ok {
		t.Error("out-of-range column should not match")
	}

	whole := NewWholeRow(MustCompile(`防御力[0-9～]+%`))
	if m, ok := whole.Match(line); !ok || m != "防御力10～15%" {
		t.Errorf("whole-row Match() = %q, %v, want 防御力10～15%%, true", m, ok)
	}

	spanning := NewWholeRow(MustCompile(`火属性\|攻撃`))
	if m, ok := spanning.Match(line); !ok || m != "火属性|攻撃" {
		t.Errorf("spanning Match() = %q, %v, want whole-line match", m, ok)
	}
}

func TestRegexpLookaround(t *testing.T) {
	re := MustCompile(`(?<!スキル)威力:(\d+)%`)
	if re.MatchString("スキル威力:50%") {
		t.Error("lookbehind should reject スキル威力")
	}
	if !re.MatchString("奥義威力:50%") {
		t.Error("lookbehind should accept 奥義威力")
	}
	got := re.ReplaceAllFunc("威力:50%と威力:20%", func(g []string) string { return "[" + g[1] + "]" })
	if got != "[50]と[20]" {
		t.Errorf("ReplaceAllFunc() = %q, want [50]と[20]", got)
	}
	if diff := cmp.Diff([]string{"10", "20"}, MustCompile(`[0-9]+`).FindAllString("a10b20")); diff != "" {
		t.Errorf("FindAllString mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeWideQuantifiers(t *testing.T) {
	got := NormalizeWideQuantifiers(`攻撃.{3}UP|[火水]{3}属性`)
	want := `攻撃.{1}UP|[火水]{1}属性`
	if got != want {
		t.Errorf("NormalizeWideQuantifiers() = %q, want %q", got, want)
	}
}
