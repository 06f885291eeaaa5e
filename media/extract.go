package media

import (
	"strings"

	"golang.org/x/net/html"
)

// embedTags are the rich-text editor's media embed elements.
var embedTags = map[string]bool{
	"img":    true,
	"video":  true,
	"source": true,
	"iframe": true,
}

// extractReferences walks the rich-text body and collects every media
// URL under the application's own upload prefix. The tokenizer is
// lenient: malformed markup yields whatever was parsed up to the error,
// degrading to an empty set in the worst case.
func extractReferences(body, urlPrefix string) map[string]struct{} {
	refs := make(map[string]struct{})
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return refs
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if !embedTags[string(name)] {
			continue
		}
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			attr := string(key)
			if attr != "src" && attr != "url" {
				continue
			}
			if url := string(val); strings.HasPrefix(url, urlPrefix) {
				refs[url] = struct{}{}
			}
		}
	}
}
