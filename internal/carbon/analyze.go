package carbon

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const bytesPerMB = 1024 * 1024

// Placeholder values reported for properties the analyzer does not inspect.
// Response headers are never consulted for location, caching or CDN use.
const (
	ServerLocationEstimated = "Estimated"
	CachingNotChecked       = "Not Checked"
)

// Element queries, one per counted resource type.
const (
	externalScripts = "script[src]"
	stylesheets     = `link[rel~="stylesheet"]`
	images          = "img"
)

// Metrics is the unrounded result of analyzing one page body.
type Metrics struct {
	PageSizeMB      float64
	ScriptCount     int
	StylesheetCount int
	ImageCount      int
	ServerLocation  string
	CachingStatus   string
	CDNUsed         bool
}

// Analyze parses body leniently and counts external scripts, stylesheet
// links and images. Page size is taken from len(body), not from the parsed
// document. Analyze is a pure function of its input.
func Analyze(body []byte) (Metrics, error) {
	// Scripting is disabled so <noscript> content is parsed as markup and
	// its elements are counted like any other.
	root, err := html.ParseWithOptions(bytes.NewReader(body), html.ParseOptionEnableScripting(false))
	if err != nil {
		return Metrics{}, fmt.Errorf("parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	return Metrics{
		PageSizeMB:      float64(len(body)) / bytesPerMB,
		ScriptCount:     doc.Find(externalScripts).Length(),
		StylesheetCount: doc.Find(stylesheets).Length(),
		ImageCount:      doc.Find(images).Length(),
		ServerLocation:  ServerLocationEstimated,
		CachingStatus:   CachingNotChecked,
		CDNUsed:         false,
	}, nil
}
