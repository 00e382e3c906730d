package pricelist

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const sample = `<html><body>
<table data-pricelist="ProAudio 2026" data-price-type="retail" data-margin="30">
  <tr><th>Product</th><th>Description</th><th>Category</th><th>Cost</th><th>Markup %</th><th>Retail</th></tr>
  <tr><td>Ceiling Speaker</td><td>8" coaxial</td><td>worship</td><td>$100.00</td><td>50</td><td></td></tr>
  <tr><td>Stage Monitor</td><td>12" wedge</td><td>Club</td><td>200</td><td></td><td>$1,299.99</td></tr>
  <tr><td>Mixer</td><td></td><td>home</td><td>80</td><td></td><td></td></tr>
  <tr><td>Bad Row</td><td></td><td>bowling</td><td>10</td><td></td><td></td></tr>
  <tr><td></td><td>no name</td><td>home</td><td>10</td><td></td><td></td></tr>
</table>
</body></html>`

func TestParse(t *testing.T) {
	res, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Pricelists) != 1 || res.Pricelists[0].Name != "ProAudio 2026" {
		t.Fatalf("pricelists = %+v", res.Pricelists)
	}
	if len(res.Products) != 3 {
		t.Fatalf("products = %d, skipped = %v", len(res.Products), res.Skipped)
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("skipped = %v", res.Skipped)
	}

	want := map[string]struct {
		category string
		retail   string
	}{
		"Ceiling Speaker": {"worship", "150"},
		"Stage Monitor":   {"club", "1299.99"},
		"Mixer":           {"home", "104"},
	}
	for _, p := range res.Products {
		w, ok := want[p.Name]
		if !ok {
			t.Fatalf("unexpected product %q", p.Name)
		}
		if p.CategoryID != w.category {
			t.Errorf("%s category = %s, want %s", p.Name, p.CategoryID, w.category)
		}
		if !p.RetailPrice.Equal(decimal.RequireFromString(w.retail)) {
			t.Errorf("%s retail = %s, want %s", p.Name, p.RetailPrice, w.retail)
		}
		if p.PricelistID == nil || *p.PricelistID != res.Pricelists[0].ID {
			t.Errorf("%s pricelist = %v", p.Name, p.PricelistID)
		}
	}
}

func TestParseStableIDs(t *testing.T) {
	a, _ := Parse(strings.NewReader(sample))
	b, _ := Parse(strings.NewReader(sample))
	if a.Products[0].ID != b.Products[0].ID || a.Pricelists[0].ID != b.Pricelists[0].ID {
		t.Fatal("ids differ between imports")
	}
}

func TestParseNoTable(t *testing.T) {
	if _, err := Parse(strings.NewReader("<p>nothing here</p>")); err == nil {
		t.Fatal("expected error")
	}
}
