package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Page is the recipe data found on a web page.
type Page struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Servings    int      `json:"servings,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// IngredientText joins the ingredient lines the way the analyzer reads them.
func (p Page) IngredientText() string {
	return strings.Join(p.Ingredients, "\n")
}

// Clipper fetches recipe pages and extracts their ingredient lists.
type Clipper struct {
	client *http.Client
}

// NewClipper creates a new Clipper. A nil client gets a 15 second timeout.
func NewClipper(client *http.Client) *Clipper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Clipper{client: client}
}

// ClipURL fetches the URL and extracts title, ingredient lines, servings and image.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "meal-planner/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	page, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	page.URL = url
	return page, nil
}

// Parse extracts recipe data from an HTML document.
// Structured recipe data (JSON-LD) wins; otherwise list items are read from the
// ingredient section of the markup.
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &Page{Ingredients: []string{}}
	if ld, ok := findLDRecipe(doc); ok {
		page.Title = ld.Name
		page.Ingredients = cleanLines(ld.Ingredients)
		page.Servings = leadingInt(ld.yield())
		page.ImageURL = ld.image()
	}

	doc.Find("script, style, nav, footer, iframe, .ads, #ads").Remove()

	if page.Title == "" {
		page.Title = firstText(doc, `meta[property="og:title"]`, "h1", "title")
	}
	if page.ImageURL == "" {
		page.ImageURL, _ = doc.Find(`meta[property="og:image"]`).Attr("content")
	}
	if len(page.Ingredients) == 0 {
		page.Ingredients = IngredientLines(doc.Selection)
	}
	return page, nil
}

// ExtractIngredients reads the ingredient list items of an HTML fragment, such as a blog post body.
func ExtractIngredients(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return IngredientLines(doc.Selection), nil
}

// IngredientLines finds ingredient list items: microdata first, then elements with an
// "ingredient" class, then the first list after an "Ingredients" heading.
func IngredientLines(s *goquery.Selection) []string {
	if found := texts(s.Find(`[itemprop="recipeIngredient"], [itemprop="ingredients"]`)); len(found) > 0 {
		return found
	}
	if found := texts(s.Find(`[class*="ingredient"] li`)); len(found) > 0 {
		return found
	}

	lines := []string{}
	s.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		title := strings.ToLower(h.Text())
		if !strings.Contains(title, "ingredient") && !strings.Contains(title, "zutaten") {
			return true
		}
		list := h.NextAllFiltered("ul, ol").First()
		lines = texts(list.Find("li"))
		return len(lines) == 0
	})
	return lines
}

func texts(s *goquery.Selection) []string {
	var raw []string
	s.Each(func(_ int, item *goquery.Selection) {
		raw = append(raw, item.Text())
	})
	return cleanLines(raw)
}

func cleanLines(raw []string) []string {
	lines := make([]string, 0, len(raw))
	for _, r := range raw {
		line := strings.Join(strings.Fields(r), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if content, ok := node.Attr("content"); ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
		if text := strings.TrimSpace(node.Text()); text != "" {
			return text
		}
	}
	return ""
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 0
	}
	if end > 0 {
		s = s[:end]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ldRecipe is the part of a schema.org Recipe we read.
type ldRecipe struct {
	Type        any             `json:"@type"`
	Name        string          `json:"name"`
	Ingredients []string        `json:"recipeIngredient"`
	Yield       json.RawMessage `json:"recipeYield"`
	Image       json.RawMessage `json:"image"`
	Graph       []ldRecipe      `json:"@graph"`
}

func (r ldRecipe) isRecipe() bool {
	switch t := r.Type.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// yield accepts "4", 4, ["4", "4 servings"].
func (r ldRecipe) yield() string {
	return firstScalar(r.Yield)
}

// image accepts a URL, a list of URLs or an ImageObject.
func (r ldRecipe) image() string {
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(r.Image, &obj); err == nil && obj.URL != "" {
		return obj.URL
	}
	return firstScalar(r.Image)
}

func firstScalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return firstScalar(list[0])
	}
	return ""
}

func findLDRecipe(doc *goquery.Document) (ldRecipe, bool) {
	var found ldRecipe
	var ok bool
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found, ok = decodeLD([]byte(s.Text()))
		return !ok
	})
	return found, ok
}

func decodeLD(data []byte) (ldRecipe, bool) {
	var candidates []ldRecipe
	var single ldRecipe
	if err := json.Unmarshal(data, &single); err == nil {
		candidates = append(candidates, single)
		candidates = append(candidates, single.Graph...)
	} else if err := json.Unmarshal(data, &candidates); err != nil {
		return ldRecipe{}, false
	}
	for _, c := range candidates {
		if c.isRecipe() && len(c.Ingredients) > 0 {
			return c, true
		}
	}
	return ldRecipe{}, false
}
