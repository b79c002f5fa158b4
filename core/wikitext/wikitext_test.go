package wikitext

import (
	"strings"
	"testing"
)

func TestRemoveBlocks(t *testing.T) {
	src := "a\n#region(SSR,close)\n#includex(x)\n#endregion\nb\n#flex(flex-start){{\n#-\n|A|\n}}\nc"
	if got, want := RemoveRegionBlocks(src), "a\n\nb\n#flex(flex-start){{\n#-\n|A|\n}}\nc"; got != want {
		t.Errorf("RemoveRegionBlocks() = %q, want %q", got, want)
	}
	if got, want := RemoveFlexBlocks(src), "a\n#region(SSR,close)\n#includex(x)\n#endregion\nb\n\nc"; got != want {
		t.Errorf("RemoveFlexBlocks() = %q, want %q", got, want)
	}
}

func TestContentsLinks(t *testing.T) {
	article := strings.Join([]string{
		"*攻撃系 [#atk]",
		"本文",
		"**攻撃力UP [#atkup]",
		"***全体 [#all]",
		"*見出しのみ",
	}, "\n")

	tests := []struct {
		depth int
		want  string
	}{
		{1, "-[[攻撃系>P#atk]]"},
		{2, "-[[攻撃系>P#atk]]\n--[[攻撃力UP>P#atkup]]"},
		{3, "-[[攻撃系>P#atk]]\n--[[攻撃力UP>P#atkup]]\n---[[全体>P#all]]"},
	}
	for _, tt := range tests {
		if got := ContentsLinks(article, "P", tt.depth); got != tt.want {
			t.Errorf("ContentsLinks(depth %d) = %q, want %q", tt.depth, got, tt.want)
		}
	}
}

func TestConvertToShadowHeaders(t *testing.T) {
	in := strings.Join([]string{
		"**回復(スキル) [#s1]",
		"本文",
		"**回復(アビ1) [#s2]",
		"**回復(覚醒/トラストアビ)",
		"**普通の見出し [#h]",
	}, "\n")
	want := strings.Join([]string{
		"**回復(スキル・アビリティ各列)",
		"#shadowheader(2,回復(スキル))",
		"本文",
		"#shadowheader(2,回復(アビ1))",
		"#shadowheader(2,回復(覚醒/トラストアビ))",
		"**普通の見出し [#h]",
	}, "\n")
	if got := ConvertToShadowHeaders(in); got != want {
		t.Errorf("ConvertToShadowHeaders() =\n%s\nwant\n%s", got, want)
	}
}

func TestCreateIncludex(t *testing.T) {
	got := CreateIncludex("火属性\n\n  水属性 \n", IncludexOptions{Heading: "属性", Depth: 2})
	want := "**属性\n#region(SSR,close)\n#includex(テーブル/スキル・アビリティ/SSR,filter=^#sort|\\|h$|\\|f$|\\|c$|火属性|^}},titlestr=off)\n#endregion" +
		"\n\n" +
		"**属性\n#region(SSR,close)\n#includex(テーブル/スキル・アビリティ/SSR,filter=^#sort|\\|h$|\\|f$|\\|c$|水属性|^}},titlestr=off)\n#endregion"
	if got != want {
		t.Errorf("CreateIncludex() =\n%s\nwant\n%s", got, want)
	}

	shadow := CreateIncludex("x", IncludexOptions{Heading: "H", Depth: 3, Shadow: true, WithSR: true})
	if !strings.HasPrefix(shadow, "#shadowheader(3,H)\n#region(SSR,close)") {
		t.Errorf("shadow heading missing: %q", shadow)
	}
	if !strings.Contains(shadow, "#endregion\n\n#region(SR,close)\n#includex(テーブル/スキル・アビリティ/SR,") {
		t.Errorf("SR region missing: %q", shadow)
	}
}

func TestCreateColumnIncludex(t *testing.T) {
	got := CreateColumnIncludex("回復", "回復", 1, true)

	if !strings.HasPrefix(got, "*回復(スキル・アビリティ列)\n#shadowheader(2,回復(スキル))\n") {
		t.Errorf("unexpected heading: %q", got)
	}
	if n := strings.Count(got, "#region(SSR,close)"); n != 5 {
		t.Errorf("SSR regions = %d, want 5", n)
	}
	if n := strings.Count(got, "#region(SR,close)"); n != 4 {
		t.Errorf("SR regions = %d, want 4", n)
	}
	if !strings.Contains(got, `filter=^#sort|\|h$|\|f$|\|c$|^(?:[^|]*\|){10}[^|]*回復[^|]*(?=\|)|^}}`) {
		t.Error("last column filter missing")
	}
	if !strings.HasSuffix(got, "#shadowheader(2,回復(覚醒/トラストアビ))\n#region(SSR,close)\n"+
		`#includex(テーブル/スキル・アビリティ/SSR,filter=^#sort|\|h$|\|f$|\|c$|^(?:[^|]*\|){10}[^|]*回復[^|]*(?=\|)|^}},titlestr=off)`+
		"\n#endregion\n") {
		t.Errorf("unexpected tail: %q", got)
	}
}

func TestAnnotateAttackPower(t *testing.T) {
	in := strings.Join([]string{
		"|x|名|SR|a|威力:150%|b|1000|威力:150%の攻撃|威力80%の攻撃|スキル威力:50%|",
		"|x|名|SR|a|b|c|ATK|威力:150%|",
		"|short|",
	}, "\n")
	want := strings.Join([]string{
		"|x|名|SR|a|威力:150%(1500)|b|1000|威力:150%(1500)の攻撃|威力:80%(800)の攻撃|スキル威力:50%|",
		"|x|名|SR|a|b|c|ATK|威力:150%|",
		"|short|",
	}, "\n")
	got := AnnotateAttackPower(in)
	if got != want {
		t.Errorf("AnnotateAttackPower() =\n%s\nwant\n%s", got, want)
	}
	if again := AnnotateAttackPower(got); again != got {
		t.Errorf("second pass changed the table:\n%s", again)
	}
}

func TestAnnotateAttackPowerRounding(t *testing.T) {
	got := AnnotateAttackPower("|1|2|3|4|威力:33%|6|1234|")
	if want := "|1|2|3|4|威力:33%(407)|6|1234|"; got != want {
		t.Errorf("AnnotateAttackPower() = %q, want %q", got, want)
	}
}
