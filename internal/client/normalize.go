package client

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"storefront/client/internal/domain"
)

func normalizeProduct(p *domain.Product) {
	p.Description = plainText(p.Description)
	p.Images = cleanImageURLs(p.Images)
}

// plainText strips markup from descriptions so search matches what is displayed
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		log.Debugf("Failed to parse description markup: %v", err)
		return s
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// cleanImageURLs undoes the catalog's habit of serving JSON-encoded arrays
// inside image strings, e.g. `["https://i.imgur.com/a.jpeg"`.
func cleanImageURLs(images []string) []string {
	cleaned := make([]string, 0, len(images))
	for _, image := range images {
		image = strings.Trim(strings.TrimSpace(image), `[]"`)
		if image == "" {
			continue
		}
		cleaned = append(cleaned, image)
	}
	return cleaned
}
