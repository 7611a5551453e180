package extractor

import "strings"

var noDataPhrases = []string{
	"沒有找到重大訊息",
	"無重大訊息",
	"沒有找到",
}

// HasNoDataMarker reports whether the document says there were no
// announcements for the requested day.
func HasNoDataMarker(document string) bool {
	for _, phrase := range noDataPhrases {
		if strings.Contains(document, phrase) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(document), "no data")
}
