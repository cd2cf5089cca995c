package resolution

import (
	"time"

	"github.com/ganot/applinks/internal/metadata"
)

// VisitIDKey is the query parameter and side-channel key carrying a visit ID.
const VisitIDKey = "visit_id"

// LinkContext is threaded through the pipeline for one traversal. Stages treat
// it as a value: enrichment goes through the With* helpers, which copy.
type LinkContext struct {
	IsFirstLaunch   bool
	LaunchTimestamp time.Time
	DeepLinkPath    string
	DeepLinkParams  map[string]string
	AdditionalData  map[string]metadata.Value
}

// NewLinkContext creates an empty context stamped with launchedAt.
func NewLinkContext(firstLaunch bool, launchedAt time.Time) LinkContext {
	return LinkContext{
		IsFirstLaunch:   firstLaunch,
		LaunchTimestamp: launchedAt,
		DeepLinkParams:  map[string]string{},
		AdditionalData:  map[string]metadata.Value{},
	}
}

// Clone returns a deep copy of the maps in lc.
func (lc LinkContext) Clone() LinkContext {
	params := make(map[string]string, len(lc.DeepLinkParams))
	for k, v := range lc.DeepLinkParams {
		params[k] = v
	}
	lc.DeepLinkParams = params
	lc.AdditionalData = metadata.Clone(lc.AdditionalData)
	return lc
}

// WithPath returns a copy of lc with the deep-link path set.
func (lc LinkContext) WithPath(path string) LinkContext {
	next := lc.Clone()
	next.DeepLinkPath = path
	return next
}

// WithParams returns a copy of lc whose params are replaced by params.
func (lc LinkContext) WithParams(params map[string]string) LinkContext {
	next := lc.Clone()
	next.DeepLinkParams = make(map[string]string, len(params))
	for k, v := range params {
		next.DeepLinkParams[k] = v
	}
	return next
}

// WithData returns a copy of lc with key set in AdditionalData.
func (lc LinkContext) WithData(key string, value metadata.Value) LinkContext {
	next := lc.Clone()
	next.AdditionalData[key] = value
	return next
}

// Result is the terminal outcome of one traversal.
type Result struct {
	Handled     bool                      `json:"handled"`
	OriginalURL string                    `json:"original_url"`
	Path        string                    `json:"path"`
	Params      map[string]string         `json:"params"`
	Metadata    map[string]metadata.Value `json:"metadata"`
	Error       string                    `json:"error,omitempty"`
}

// Actionable reports whether the result carries a route to navigate to.
// An empty path means "nothing to do", not failure.
func (r Result) Actionable() bool {
	return r.Handled && r.Path != ""
}
