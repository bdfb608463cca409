package rewrite

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dejo1307/pagerepl/internal/canon"
	"github.com/dejo1307/pagerepl/internal/jsx"
)

// Icons moves every <svg> into an icon component keyed by the hash of its
// canonical markup, so identical icons share one file.
type Icons struct{}

func (Icons) Name() string { return "icons" }

func (p Icons) Apply(_ context.Context, rc *Context) error {
	for _, u := range rc.targets() {
		root, err := jsx.Walk(u.Root, jsx.VisitorFunc(func(n jsx.Node) (jsx.Step, error) {
			el, ok := n.(*jsx.Element)
			if !ok || el.Tag != "svg" {
				return jsx.Step{}, nil
			}
			icon, err := rc.icon(el)
			if err != nil {
				return jsx.Step{}, err
			}
			return jsx.ReplaceWith(icon.ref(nil, nil)), nil
		}))
		if err != nil {
			return fmt.Errorf("%s: %w", u.Path, err)
		}
		u.Root = root
	}
	return nil
}

func (c *Context) icon(svg *jsx.Element) (*Unit, error) {
	hash, err := ContentHash(svg)
	if err != nil {
		return nil, err
	}
	if u, ok := c.icons[hash]; ok {
		return u, nil
	}

	name := ""
	for n := 8; n <= len(hash); n += 4 {
		candidate := "Icon" + strings.ToUpper(hash[:n])
		if c.Names.Reserve(candidate) {
			name = candidate
			break
		}
	}
	if name == "" {
		name = c.Names.Claim("Icon")
	}
	u := c.addUnit(KindIcon, "components/icons", name, svg)
	u.Key = hash
	c.icons[hash] = u
	return u, nil
}

// ContentHash returns the hex sha256 of n's canonical markup.
func ContentHash(n jsx.Node) (string, error) {
	markup, err := jsx.RenderHTML(n, nil)
	if err != nil {
		return "", fmt.Errorf("hashing subtree: %w", err)
	}
	tree, err := canon.Canonicalize(markup)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(tree.String()))
	return hex.EncodeToString(sum[:]), nil
}
