package media

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractReferences(t *testing.T) {
	body := `<p>hello</p>
<img src="/media/quills/img/1/a.png">
<video src="/media/quills/video/1/b.mp4"></video>
<iframe src="/media/quills/video/1/c.mp4"></iframe>
<img src="https://elsewhere.example.com/x.png">`

	refs := extractReferences(body, "/media")
	require.Len(t, refs, 3)
	require.Contains(t, refs, "/media/quills/img/1/a.png")
	require.Contains(t, refs, "/media/quills/video/1/b.mp4")
	require.Contains(t, refs, "/media/quills/video/1/c.mp4")
}

func TestExtractReferencesSourceURLAttr(t *testing.T) {
	body := `<video><source url="/media/quills/video/1/b.mp4"></video>`

	refs := extractReferences(body, "/media")
	require.Contains(t, refs, "/media/quills/video/1/b.mp4")
}

func TestExtractReferencesIgnoresForeignURLs(t *testing.T) {
	refs := extractReferences(`<img src="https://cdn.example.com/a.png">`, "/media")
	require.Empty(t, refs)
}

func TestExtractReferencesMalformedHTML(t *testing.T) {
	// The tokenizer keeps whatever it managed to parse.
	body := `<img src="/media/a.png"><div <<<< <img src=`
	refs := extractReferences(body, "/media")
	require.Contains(t, refs, "/media/a.png")
}

func TestExtractReferencesEmptyBody(t *testing.T) {
	require.Empty(t, extractReferences("", "/media"))
}
