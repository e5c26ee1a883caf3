package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry or abort decisions.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure
  - Transport failures, timeouts, 5xx, rate limiting by the remote.

# CauseRequestRejected
  - The remote refused the request (4xx other than 429), including
    rejected API credentials.

# CauseContentInvalid
  - Content was fetched but could not be processed meaningfully
    (wrong content type, undecodable JSON, unparsable HTML).

# CauseStorageFailure
  - Failure while loading or persisting the request cache or a report.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseRequestRejected
	CauseContentInvalid
	CauseStorageFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseRequestRejected:
		return "request_rejected"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

type ArtifactKind string

const (
	ArtifactCacheFile ArtifactKind = "cache_file"
	ArtifactReport    ArtifactKind = "report"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrField      AttributeKey = "field"
	AttrCacheKey   AttributeKey = "cache_key"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrHash       AttributeKey = "hash"
	AttrState      AttributeKey = "state"
	AttrMessage    AttributeKey = "message"
)
