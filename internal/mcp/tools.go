package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions for the marklet MCP server.
//
// Every tool returns a JSON text payload. Failures set IsError and carry an
// {"error": {code, message, status}} object so clients can branch on the code.

var createToolDef = mcp.NewTool("bookmarklet_create",
	mcp.WithDescription("Create a bookmarklet from JavaScript source. "+
		"The code is normalized into a javascript: link that can be dragged into a browser toolbar: "+
		"raw code is wrapped in an error-reporting IIFE, fenced code blocks are unwrapped first, "+
		"and code already starting with javascript: is stored as-is. Returns the stored record."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Display name for the bookmarklet (must be non-empty)"),
	),
	mcp.WithString("code",
		mcp.Required(),
		mcp.Description("JavaScript source: raw statements, a javascript: link, or a fenced ``` code block"),
	),
	mcp.WithString("description",
		mcp.Description("What the bookmarklet does (optional, searchable)"),
	),
)

var getToolDef = mcp.NewTool("bookmarklet_get",
	mcp.WithDescription("Fetch a single bookmarklet by id. Returns the full record including the "+
		"executable javascript: code."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Bookmarklet id"),
	),
)

var updateToolDef = mcp.NewTool("bookmarklet_update",
	mcp.WithDescription("Replace the name, description, and code of an existing bookmarklet. "+
		"All fields are replaced, so pass the current value for anything that should not change. "+
		"The code goes through the same normalization as bookmarklet_create."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Bookmarklet id"),
	),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("New display name (must be non-empty)"),
	),
	mcp.WithString("code",
		mcp.Required(),
		mcp.Description("New JavaScript source (must be non-empty)"),
	),
	mcp.WithString("description",
		mcp.Description("New description (omit or pass empty to clear)"),
	),
)

var deleteToolDef = mcp.NewTool("bookmarklet_delete",
	mcp.WithDescription("Delete a bookmarklet by id. Deleting an id that does not exist is not an "+
		"error; the result reports deleted: false."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Bookmarklet id"),
	),
)

var listToolDef = mcp.NewTool("bookmarklet_list",
	mcp.WithDescription("List all bookmarklets, newest first."),
)

var searchToolDef = mcp.NewTool("bookmarklet_search",
	mcp.WithDescription("Search bookmarklets by name and description (case-insensitive substring "+
		"match). An empty query returns everything."),
	mcp.WithString("query",
		mcp.Description("Search text"),
	),
)

var shareToolDef = mcp.NewTool("bookmarklet_share",
	mcp.WithDescription("Produce a share token and link for a bookmarklet. The token is a URL-safe "+
		"encoding of the name, description, and code; anyone with the link can import their own copy."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Bookmarklet id to share"),
	),
)

var receiveToolDef = mcp.NewTool("bookmarklet_receive",
	mcp.WithDescription("Import a bookmarklet from a share token or a full share link. A new record "+
		"with a fresh id is created; a blank name in the token becomes \"Untitled\"."),
	mcp.WithString("token",
		mcp.Required(),
		mcp.Description("Share token, or a share link whose fragment carries the token"),
	),
)

var exportToolDef = mcp.NewTool("bookmarklet_export",
	mcp.WithDescription("Export the whole collection to a file. Format json writes a re-importable "+
		"pretty-printed array; format html writes a Netscape bookmarks file that browsers can import "+
		"directly. Without a path the file goes to ~/.marklet/exports/."),
	mcp.WithString("path",
		mcp.Description("Destination file path (extension must match the format); defaults to ~/.marklet/exports/"),
	),
	mcp.WithString("format",
		mcp.Description("Export format: json (default) or html"),
		mcp.Enum("json", "html"),
	),
)

var importToolDef = mcp.NewTool("bookmarklet_import",
	mcp.WithDescription("Import bookmarklets from a JSON file previously produced by "+
		"bookmarklet_export. The file must contain a top-level array; items with missing fields are "+
		"filled with defaults rather than rejected."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the .json file to import"),
	),
)
