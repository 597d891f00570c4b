package station

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/ariefcatur/resto-pos/internal/statussync"
	"golang.org/x/net/html"
)

// ParseCards reads the order cards out of server-rendered dashboard fragments. A card is the
// status button carrying data-id, data-categoria and data-status. Later duplicates of an id
// are ignored.
func ParseCards(fragments ...string) ([]statussync.Card, error) {
	var cards []statussync.Card
	seen := map[int]bool{}
	for _, frag := range fragments {
		if strings.TrimSpace(frag) == "" {
			continue
		}
		doc, err := html.Parse(strings.NewReader(frag))
		if err != nil {
			return nil, fmt.Errorf("parse fragment: %w", err)
		}
		walk(doc, func(n *html.Node) {
			idAttr, ok := attr(n, "data-id")
			if !ok {
				return
			}
			status, ok := attr(n, "data-status")
			if !ok {
				return
			}
			id, err := strconv.Atoi(strings.TrimSpace(idAttr))
			if err != nil || seen[id] {
				return
			}
			seen[id] = true
			cat, _ := attr(n, "data-categoria")
			cards = append(cards, statussync.NewCard(id, cat, orders.Stato(status)))
		})
	}
	return cards, nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
