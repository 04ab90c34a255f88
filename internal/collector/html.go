package collector

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/prowlerhub/internal/models"
)

// FindingsTableID is the element id of the findings table in Prowler HTML reports
const FindingsTableID = "findingsTable"

// findingColumns is the minimum number of cells for a full finding row
const findingColumns = 12

// ParseHTMLReport extracts a text preview, keyword counts and findings from
// a Prowler HTML report.
func ParseHTMLReport(content string, opts Options) models.ParseResult {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return models.Failed(models.KindMalformed, fmt.Sprintf("HTML parsing error: %v", err))
	}

	rows := findingRows(doc)

	counts := models.NewKeywordCounts()
	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		CountTokens(counts, cells[0], cells[1])
	}

	return models.Succeeded(&models.ParseSuccess{
		FileType:      models.FileTypeHTML,
		KeywordCounts: counts,
		TextPreview:   truncateRunes(textContent(doc), opts.previewLength()),
		Findings:      findingsFromRows(tableRows(findTable(doc, FindingsTableID))),
	})
}

// ExtractFindings maps the rows of the findings table into Finding records.
// A document without the table yields an empty list.
func ExtractFindings(content string) ([]models.Finding, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return findingsFromRows(tableRows(findTable(doc, FindingsTableID))), nil
}

// findingRows returns the cell texts of the rows that carry status and
// severity tokens: the findings table when present, otherwise every row.
func findingRows(doc *html.Node) [][]string {
	if table := findTable(doc, FindingsTableID); table != nil {
		return tableRows(table)
	}
	return tableRows(doc)
}

// findingsFromRows converts rows with at least 12 cells into findings.
// Column 7 holds an internal identifier and is skipped.
func findingsFromRows(rows [][]string) []models.Finding {
	findings := make([]models.Finding, 0, len(rows))
	for _, c := range rows {
		if len(c) < findingColumns {
			continue
		}
		findings = append(findings, models.Finding{
			Status:         c[0],
			Severity:       c[1],
			Service:        c[2],
			Region:         c[3],
			CheckID:        c[4],
			CheckTitle:     c[5],
			ResourceID:     c[6],
			StatusExtended: c[8],
			Risk:           c[9],
			Recommendation: c[10],
			Compliance:     c[11],
		})
	}
	return findings
}

// findTable returns the first <table> element with the given id
func findTable(n *html.Node, id string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == atom.Table && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTable(c, id); found != nil {
			return found
		}
	}
	return nil
}

// tableRows returns the trimmed <td> texts of every <tr> below n
func tableRows(n *html.Node) [][]string {
	if n == nil {
		return nil
	}
	var rows [][]string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.DataAtom == atom.Tr {
			rows = append(rows, rowCells(node))
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return rows
}

// rowCells returns the text of the <td> cells directly inside a row
func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Td {
			cells = append(cells, collapseWhitespace(textContent(c)))
		}
	}
	return cells
}

// textContent joins every visible text node below n with single spaces
func textContent(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch node.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			}
		case html.CommentNode:
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseWhitespace(strings.Join(parts, " "))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
