package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

type digestData struct {
	Total     int
	CheckedAt string
	Sellers   []sellerDigest
}

type sellerDigest struct {
	Name     string
	Products []productDigest
}

type productDigest struct {
	Title   string
	Link    string
	Price   string
	FoundAt string
}

var digestTemplate = template.Must(template.New("digest").Parse(`<html>
<body style="font-family: Arial, sans-serif; margin: 20px; background: #f8f9fa;">
  <div style="max-width: 800px; margin: 0 auto; background: white; padding: 20px; border-radius: 10px;">
    <h1 style="color: #e74c3c; text-align: center;">New Products Found</h1>
    <div style="background: #ecf0f1; padding: 15px; border-radius: 5px; text-align: center; margin-bottom: 20px;">
      <h3>{{.Total}} new matching products</h3>
      <p>Check performed at {{.CheckedAt}}</p>
    </div>
{{range .Sellers}}    <div style="margin-bottom: 30px; border: 2px solid #3498db; padding: 20px; border-radius: 8px;">
      <h2 style="background: #3498db; color: white; padding: 10px; margin: -20px -20px 15px -20px; border-radius: 6px 6px 0 0;">{{.Name}}</h2>
      <p><strong>{{len .Products}} new products</strong></p>
{{range .Products}}      <div style="margin: 15px 0; padding: 15px; background: #f8f9fa; border-radius: 8px; border-left: 4px solid #e74c3c;">
        <h3>{{.Title}}</h3>
{{if .Price}}        <p style="font-weight: bold; color: #27ae60;">{{.Price}}</p>
{{end}}        <a href="{{.Link}}" style="background: #3498db; color: white; padding: 8px 16px; text-decoration: none; border-radius: 5px; display: inline-block; margin-top: 10px;">View product</a>
        <p style="color: #7f8c8d; font-size: 0.9em; margin-top: 10px;">Found at: {{.FoundAt}}</p>
      </div>
{{end}}    </div>
{{end}}    <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #ecf0f1; color: #7f8c8d;">
      <p><em>This notification was generated automatically by DHgate Monitor</em></p>
    </div>
  </div>
</body>
</html>
`))

// BuildDigest renders the HTML body for one run's new products. Sellers are
// sorted by name so repeated runs with the same input produce the same body.
func BuildDigest(newProducts map[string][]models.Product, now time.Time) (string, error) {
	data := digestData{
		Total:     countProducts(newProducts),
		CheckedAt: now.Format("02-01-2006 15:04"),
	}

	names := make([]string, 0, len(newProducts))
	for name := range newProducts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sd := sellerDigest{Name: name}
		for _, p := range newProducts[name] {
			sd.Products = append(sd.Products, productDigest{
				Title:   p.Title,
				Link:    p.Link,
				Price:   p.Price,
				FoundAt: p.FoundAt.Format("02-01-2006 15:04"),
			})
		}
		data.Sellers = append(data.Sellers, sd)
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}

	return buf.String(), nil
}

// Subject builds the digest subject line carrying the total count and date.
func Subject(newProducts map[string][]models.Product, now time.Time) string {
	return fmt.Sprintf("%d new products found - %s", countProducts(newProducts), now.Format("02-01-2006"))
}

func countProducts(newProducts map[string][]models.Product) int {
	total := 0
	for _, products := range newProducts {
		total += len(products)
	}
	return total
}
