package backup

import (
	"bytes"
	"sort"

	"golang.org/x/net/html"
)

// ParseListing extracts backup filenames from the hub's backup listing page.
// Names are picked out of anchor hrefs and text nodes. The tolerant HTML
// parser turns any body into a document, surfacing plain text and broken
// markup as text nodes, so no input makes this function fail. The result is
// deduplicated and sorted by name; a listing with no recognizable names
// yields an empty slice.
func ParseListing(body []byte) []BackupFile {
	seen := make(map[string]BackupFile)
	collect := func(s string) {
		for _, name := range namePattern.FindAllString(s, -1) {
			if bf, ok := ParseBackupName(name); ok {
				seen[bf.Name] = bf
			}
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if n.Data == "a" {
				for _, attr := range n.Attr {
					if attr.Key == "href" {
						collect(attr.Val)
					}
				}
			}
		case html.TextNode:
			collect(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// html.Parse fails only when the reader does, and bytes.Reader never does
	if doc, err := html.Parse(bytes.NewReader(body)); err == nil {
		walk(doc)
	}

	files := make([]BackupFile, 0, len(seen))
	for _, bf := range seen {
		files = append(files, bf)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files
}
