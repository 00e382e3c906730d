// Package pricelist imports supplier price lists published as HTML tables.
//
// Each <table data-pricelist="..."> is one price list. Optional attributes
// data-price-type and data-margin describe it. The header row names the
// columns; recognized headers are name, description, category, cost, markup
// and retail. A missing retail price is derived from cost and markup.
package pricelist

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/set-night/avquote/internal/domain"
	"github.com/shopspring/decimal"
)

// namespace for deterministic ids, so re-importing a list updates rows in place
var namespace = uuid.MustParse("6f1c7a3e-2b7d-4f0e-9a51-3c2d8e4b9f10")

type Result struct {
	Pricelists []domain.Pricelist
	Products   []domain.Product
	// Skipped describes rows that could not be imported.
	Skipped []string
}

func Parse(r io.Reader) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	res := &Result{}
	doc.Find("table[data-pricelist]").Each(func(_ int, table *goquery.Selection) {
		parseTable(table, res)
	})
	if len(res.Pricelists) == 0 {
		return nil, fmt.Errorf("no table with a data-pricelist attribute")
	}
	return res, nil
}

func parseTable(table *goquery.Selection, res *Result) {
	name := strings.TrimSpace(table.AttrOr("data-pricelist", ""))
	if name == "" {
		res.Skipped = append(res.Skipped, "table without a price list name")
		return
	}
	pl := domain.Pricelist{
		ID:        uuid.NewSHA1(namespace, []byte("pricelist:"+name)),
		Name:      name,
		PriceType: table.AttrOr("data-price-type", "retail"),
	}
	if margin, err := decimal.NewFromString(strings.TrimSpace(table.AttrOr("data-margin", "0"))); err == nil {
		pl.MarginPercentage = margin
	}
	res.Pricelists = append(res.Pricelists, pl)

	columns := map[string]int{}
	table.Find("tr").First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
		columns[headerKey(cell.Text())] = i
	})
	if _, ok := columns["name"]; !ok {
		res.Skipped = append(res.Skipped, fmt.Sprintf("%s: no name column", name))
		return
	}

	table.Find("tr").Slice(1, goquery.ToEnd).Each(func(row int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) == 0 {
			return
		}
		p, err := buildProduct(pl, columns, cells)
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("%s row %d: %v", name, row+1, err))
			return
		}
		res.Products = append(res.Products, p)
	})
}

func headerKey(text string) string {
	h := strings.ToLower(strings.TrimSpace(text))
	switch {
	case h == "product" || h == "name" || h == "product name":
		return "name"
	case strings.HasPrefix(h, "desc"):
		return "description"
	case strings.HasPrefix(h, "categor"), h == "market":
		return "category"
	case strings.HasPrefix(h, "cost"):
		return "cost"
	case strings.HasPrefix(h, "markup"):
		return "markup"
	case strings.HasPrefix(h, "retail"), h == "price":
		return "retail"
	}
	return h
}

func cell(cells []string, columns map[string]int, key string) string {
	i, ok := columns[key]
	if !ok || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func buildProduct(pl domain.Pricelist, columns map[string]int, cells []string) (domain.Product, error) {
	name := cell(cells, columns, "name")
	if name == "" {
		return domain.Product{}, fmt.Errorf("empty name")
	}

	categoryID := strings.ToLower(cell(cells, columns, "category"))
	category, ok := domain.CategoryByID(categoryID)
	if !ok {
		if category, ok = domain.CategoryByName(categoryID); !ok {
			return domain.Product{}, fmt.Errorf("unknown category %q", categoryID)
		}
	}

	cost, err := parseMoney(cell(cells, columns, "cost"))
	if err != nil {
		return domain.Product{}, fmt.Errorf("cost: %w", err)
	}
	markup, err := parseMoney(cell(cells, columns, "markup"))
	if err != nil {
		return domain.Product{}, fmt.Errorf("markup: %w", err)
	}
	if markup.IsZero() {
		markup = pl.MarginPercentage
	}
	retail, err := parseMoney(cell(cells, columns, "retail"))
	if err != nil {
		return domain.Product{}, fmt.Errorf("retail: %w", err)
	}
	if retail.IsZero() {
		retail = cost.Mul(decimal.NewFromInt(100).Add(markup)).Div(decimal.NewFromInt(100))
	}
	retail = retail.Round(2)
	if !retail.IsPositive() {
		return domain.Product{}, fmt.Errorf("no price")
	}

	plID := pl.ID
	plCopy := pl
	return domain.Product{
		ID:               uuid.NewSHA1(namespace, []byte("product:"+pl.Name+":"+name)),
		Name:             name,
		Description:      cell(cells, columns, "description"),
		CategoryID:       category.ID,
		PricelistID:      &plID,
		CostPrice:        cost,
		RetailPrice:      retail,
		MarkupPercentage: markup,
		IsActive:         true,
		Pricelist:        &plCopy,
	}, nil
}
