package report

// Persistence

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

func (f Format) Extension() string {
	if f == FormatHTML {
		return ".html"
	}
	return ".md"
}

type WriteResult struct {
	path        string
	contentHash string
	siteCount   int
}

func NewWriteResult(
	path string,
	contentHash string,
	siteCount int,
) WriteResult {
	return WriteResult{
		path:        path,
		contentHash: contentHash,
		siteCount:   siteCount,
	}
}

func (w *WriteResult) Path() string {
	return w.path
}

// ContentHash is the BLAKE3 digest of the written bytes.
func (w *WriteResult) ContentHash() string {
	return w.contentHash
}

func (w *WriteResult) SiteCount() int {
	return w.siteCount
}
