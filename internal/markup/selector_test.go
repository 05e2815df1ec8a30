package markup

import (
	"strings"
	"testing"
)

const selectorPage = `<html><body>
<section id="rules">
  <div class="table main" data-kind="rules">
    <div class="table-row" data-id="r1"><span>a</span></div>
    <div class="table-row disabled" data-id="r2"><span>b</span></div>
  </div>
</section>
<div class="table"><p class="table-row">c</p></div>
</body></html>`

func TestSelectorMatching(t *testing.T) {
	doc, err := Parse(strings.NewReader(selectorPage))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		sel  string
		want []string // texts of matches
	}{
		{".table-row", []string{"a", "b", "c"}},
		{"div.table-row", []string{"a", "b"}},
		{"p.table-row", []string{"c"}},
		{"#rules .table-row", []string{"a", "b"}},
		{".table-row.disabled", []string{"b"}},
		{"[data-id]", []string{"a", "b"}},
		{"[data-id=r2]", []string{"b"}},
		{`[data-kind="rules"] span`, []string{"a", "b"}},
		{"section div span", []string{"a", "b"}},
		{"body .table p", []string{"c"}},
		{"#missing .table-row", nil},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			nodes, err := doc.QueryAll(tt.sel)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, n := range nodes {
				got = append(got, Text(n))
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, sel := range []string{"", "   ", "div >", "a[b", ".", "#", "div:first-child", "[]"} {
		if _, err := Compile(sel); err == nil {
			t.Errorf("expected error for %q", sel)
		}
	}
}

func TestStyleAndClassHelpers(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<div id="x" class="a b" style="color: red; display: flex">t</div>`))
	if err != nil {
		t.Fatal(err)
	}
	n := doc.ByID("x")
	if n == nil {
		t.Fatal("element not found")
	}
	if got := StyleProperty(n, "display"); got != "flex" {
		t.Fatalf("display = %q", got)
	}
	SetStyleProperty(n, "display", "none")
	if got := Attr(n, "style"); got != "color: red; display: none" {
		t.Fatalf("style = %q", got)
	}
	SetClass(n, "last-row", true)
	SetClass(n, "a", false)
	if got := Attr(n, "class"); got != "b last-row" {
		t.Fatalf("class = %q", got)
	}
	SetClass(n, "last-row", true)
	if got := Attr(n, "class"); got != "b last-row" {
		t.Fatalf("class added twice: %q", got)
	}
}

func TestText(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<div id="x"><div>2024-01-01</div><div><b>Co</b>ffee</div>
	<script>var x = 1;</script><div>  2,50 </div></div>`))
	if err != nil {
		t.Fatal(err)
	}
	if got := Text(doc.ByID("x")); got != "2024-01-01 Coffee 2,50" {
		t.Fatalf("text = %q", got)
	}
}
