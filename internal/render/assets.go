package render

import (
	"net/url"
	"regexp"
	"strings"

	"kyon/internal/domain/content"
	"kyon/internal/domain/site"
	"kyon/internal/tree"
)

var reScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// AssetRewriter resolves relative media and link URLs against a post's
// public asset directory.
type AssetRewriter struct {
	Base     content.AssetBase
	BasePath string
	// SiteOrigin decides which absolute links count as external.
	SiteOrigin string
}

func isSchemeURL(s string) bool {
	return reScheme.MatchString(s) || strings.HasPrefix(s, "//")
}

func isHTTPURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

// withScheme gives a protocol-relative URL the site's scheme, https when
// the site has none.
func (r AssetRewriter) withScheme(href string) string {
	if !strings.HasPrefix(href, "//") {
		return href
	}
	scheme := "https"
	if u, err := url.Parse(r.SiteOrigin); err == nil && u.Scheme != "" {
		scheme = strings.ToLower(u.Scheme)
	}
	return scheme + ":" + href
}

func (r AssetRewriter) sameOrigin(href string) bool {
	o := origin(href)
	return o != "" && o == origin(r.SiteOrigin)
}

// Resolve maps one URL. Scheme-qualified and root-relative URLs come back
// unchanged, so applying Resolve twice is the same as applying it once.
func (r AssetRewriter) Resolve(src string) string {
	if src == "" || isSchemeURL(src) || strings.HasPrefix(src, "/") {
		return src
	}
	if r.Base.BaseHref != "" {
		return site.JoinBaseHref(r.Base.BaseHref, src)
	}
	if r.Base.Category != "" && r.Base.DirName != "" {
		return site.AssetURL(r.BasePath, r.Base.Category, r.Base.DirName, src)
	}
	return src
}

func (r AssetRewriter) resolveSrcset(set string) string {
	parts := strings.Split(set, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		fields[0] = r.Resolve(fields[0])
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, ", ")
}

func (r AssetRewriter) rewriteAttr(el *tree.Element, key string) {
	if v, ok := el.Attr(key); ok {
		el.SetAttr(key, r.Resolve(v))
	}
}

// Rewrite mutates nodes in place in a single traversal.
func (r AssetRewriter) Rewrite(nodes []tree.Node) {
	tree.Walk(nodes, func(n tree.Node) bool {
		el, ok := n.(*tree.Element)
		if !ok {
			return true
		}
		switch el.Tag {
		case "img", "source":
			r.rewriteAttr(el, "src")
			if v, ok := el.Attr("srcset"); ok {
				el.SetAttr("srcset", r.resolveSrcset(v))
			}
		case "track", "audio":
			r.rewriteAttr(el, "src")
		case "video":
			r.rewriteAttr(el, "src")
			r.rewriteAttr(el, "poster")
		case "a":
			r.rewriteLink(el)
		}
		return true
	})
}

func (r AssetRewriter) rewriteLink(el *tree.Element) {
	href, ok := el.Attr("href")
	if !ok || href == "" || strings.HasPrefix(href, "#") {
		return
	}
	if isSchemeURL(href) {
		if abs := r.withScheme(href); isHTTPURL(abs) && !r.sameOrigin(abs) {
			el.SetAttr("target", "_blank")
			el.SetAttr("rel", "noopener noreferrer nofollow")
		}
		return
	}
	if strings.HasPrefix(href, "/") {
		return
	}
	el.SetAttr("href", r.Resolve(href))
}
