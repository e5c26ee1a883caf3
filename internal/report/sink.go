package report

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/internal/pipeline"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/rohmanhakim/nps-crawler/pkg/fileutil"
	"github.com/rohmanhakim/nps-crawler/pkg/hashutil"
)

/*
Responsibilities
- Render a pipeline result as markdown or HTML
- Persist one file per state
- Report a content hash for every write

Output Characteristics
- Stable file name: <outputDir>/<state-slug>.<ext>
- Overwrite-safe reruns
*/

type Sink interface {
	Write(
		outputDir string,
		result pipeline.Result,
		format Format,
	) (WriteResult, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
) *LocalSink {
	return &LocalSink{
		metadataSink: metadataSink,
	}
}

func (s *LocalSink) Write(
	outputDir string,
	result pipeline.Result,
	format Format,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(outputDir, result, format)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"report",
			"LocalSink.Write",
			mapReportErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrState, result.State),
				metadata.NewAttr(metadata.AttrWritePath, err.Path),
			},
		)
		return WriteResult{}, err
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactReport,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrState, result.State),
			metadata.NewAttr(metadata.AttrHash, writeResult.ContentHash()),
		},
	)
	return writeResult, nil
}

func write(
	outputDir string,
	result pipeline.Result,
	format Format,
) (WriteResult, *ReportError) {
	var content []byte
	switch format {
	case FormatHTML:
		content = RenderHTML(result)
	default:
		content = RenderMarkdown(result)
	}

	contentHash, err := hashutil.HashBytes(content, hashutil.HashAlgoBLAKE3)
	if err != nil {
		return WriteResult{}, &ReportError{
			Message: err.Error(),
			Cause:   ErrCauseHashComputationFailed,
		}
	}

	fullPath := filepath.Join(outputDir, Slug(result.State)+format.Extension())
	if writeErr := fileutil.WriteFile(fullPath, content); writeErr != nil {
		cause := ErrCauseWriteFailure
		var fileErr *fileutil.FileError
		if errors.As(writeErr, &fileErr) && fileErr.Cause == fileutil.ErrCausePathError {
			cause = ErrCausePathError
		}
		return WriteResult{}, &ReportError{
			Message: writeErr.Error(),
			Cause:   cause,
			Path:    fullPath,
		}
	}

	return NewWriteResult(fullPath, contentHash, len(result.Sites)), nil
}

// Slug turns a state name into a file name: "District of Columbia" becomes
// "district-of-columbia".
func Slug(state string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(state)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "state"
	}
	return slug
}
