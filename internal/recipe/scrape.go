package recipe

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// extract pulls the recipe out of an HTML page. JSON-LD is tried first
// since nearly every recipe site embeds schema.org/Recipe that way, then
// microdata itemprop markup as a fallback.
func extract(body io.Reader) (*Recipe, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	page := collectPage(doc)

	for _, script := range page.jsonLD {
		if recipe := recipeFromJSONLD(script); recipe != nil {
			if recipe.Title == "" {
				recipe.Title = page.title
			}
			return recipe, nil
		}
	}

	if len(page.itempropLines) > 0 {
		return &Recipe{Title: page.title, Ingredients: page.itempropLines}, nil
	}

	return nil, errors.New("no schema.org recipe data")
}

type pageData struct {
	title         string
	jsonLD        []string
	itempropLines []string
}

func collectPage(doc *html.Node) *pageData {
	page := &pageData{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "script" && attr(n, "type") == "application/ld+json":
				page.jsonLD = append(page.jsonLD, textContent(n))
			case n.Data == "title" && page.title == "":
				page.title = strings.TrimSpace(textContent(n))
			case isIngredientProp(attr(n, "itemprop")):
				if line := collapseSpace(textContent(n)); line != "" {
					page.itempropLines = append(page.itempropLines, line)
				}
				return // don't descend into the line's own markup
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return page
}

func isIngredientProp(prop string) bool {
	return prop == "recipeIngredient" || prop == "ingredients"
}

// recipeFromJSONLD digs a schema.org Recipe out of one JSON-LD block,
// which may be a single object, an array, or wrapped in @graph.
func recipeFromJSONLD(raw string) *Recipe {
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}
	return findRecipeNode(data)
}

func findRecipeNode(data any) *Recipe {
	switch node := data.(type) {
	case []any:
		for _, entry := range node {
			if recipe := findRecipeNode(entry); recipe != nil {
				return recipe
			}
		}
	case map[string]any:
		if isRecipeType(node["@type"]) {
			return recipeFromObject(node)
		}
		if graph, ok := node["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(value any) bool {
	switch t := value.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, entry := range t {
			if s, ok := entry.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func recipeFromObject(node map[string]any) *Recipe {
	recipe := &Recipe{}
	if name, ok := node["name"].(string); ok {
		recipe.Title = strings.TrimSpace(name)
	}
	lines, ok := node["recipeIngredient"].([]any)
	if !ok {
		// older pages use the singular-free "ingredients" key
		lines, _ = node["ingredients"].([]any)
	}
	for _, entry := range lines {
		if s, ok := entry.(string); ok {
			if line := collapseSpace(s); line != "" {
				recipe.Ingredients = append(recipe.Ingredients, line)
			}
		}
	}
	if len(recipe.Ingredients) == 0 {
		return nil
	}
	return recipe
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
