package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `applinks resolves app links and manages shortened links.

Concepts:
- Custom scheme link: myapp://product/123?ref=home. Resolved locally into a path and params.
- Universal link: https://example.onapp.link/xK3d. Resolved through the registry, which returns the link's deep-link path, params and a visit id.
- Deferred link: a visit id placed on the clipboard by the web landing page before install. Recovered once, then remembered so it never replays.

Tools:
1) resolve_link(url): run a URL through the resolution pipeline. handled=false means no stage claimed it.
2) create_link / get_link: shorten a link under a verified domain, or fetch one by id.
3) recover_deferred_link: read the clipboard and resolve a deferred link. found=false means nothing usable.
4) reset_state: forget processed visit ids and the first-launch flag.

Docs:
- applinks://docs/index
- applinks://docs/deferred-links
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "applinks://docs/index",
		Name:        "docs_index",
		Title:       "applinks docs index",
		Description: "Link kinds, resolution order and result fields.",
		Content: `# applinks

## Resolution order

1. Logging
2. Universal links on configured domains (registry lookup)
3. Custom scheme links on configured schemes
4. Caller extensions

The first stage that returns a result ends the traversal. A URL no stage
claims comes back with handled=false.

## Result fields

- handled: a stage produced a destination
- path: in-app path, e.g. /product/123
- params: query or registry params, last value wins
- metadata: visit_id, link_id and other enrichment
- error: set when the URL could not be parsed or a stage failed

## Domains

Entries are exact hosts or *.base wildcards. A wildcard matches subdomains
only, never the bare base domain.
`,
	},
	{
		URI:         "applinks://docs/deferred-links",
		Name:        "docs_deferred_links",
		Title:       "Deferred links",
		Description: "How clipboard recovery works and when it refuses to replay.",
		Content: `# Deferred links

The landing page copies a visit URL (or a bare visit id) to the clipboard.
On first launch, or when recover_deferred_link is called, applinks:

1. reads the clipboard and extracts the visit id
2. skips ids already processed (ALREADY_PROCESSED)
3. fetches visit details from the registry
4. rejects expired links (EXPIRED) and visits without a link (NO_LINK_DATA)
5. clears the clipboard and resolves the link's deep-link path

Processed ids are kept (up to 500, oldest evicted first) until reset_state.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
