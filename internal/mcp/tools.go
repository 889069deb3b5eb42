package mcp

import "github.com/mark3labs/mcp-go/mcp"

var ingestToolDef = mcp.NewTool("capture_ingest",
	mcp.WithDescription("Turn a screenshot into a classified capture (note, task or reminder) and append it to the store. "+
		"Text comes from OCR, else the given text, else the file name."),
	mcp.WithString("screenshot", mcp.Required(), mcp.Description("Path of the screenshot. It does not need to exist when text is given.")),
	mcp.WithString("text", mcp.Description("Fallback text used when OCR finds nothing.")),
)

var listToolDef = mcp.NewTool("capture_list",
	mcp.WithDescription("List stored captures in the order they were ingested."),
	mcp.WithString("kind", mcp.Description("Only return captures of this kind."), mcp.Enum("note", "task", "reminder")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("capture_export",
	mcp.WithDescription("Write every capture to a file. Defaults to ~/.shotcap/exports/captures-<timestamp>.json."),
	mcp.WithString("path", mcp.Description("Destination file; the extension must match the format.")),
	mcp.WithString("format", mcp.Description("Output format; inferred from path when omitted."), mcp.Enum("json", "jsonl", "yaml")),
)

var clearToolDef = mcp.NewTool("capture_clear",
	mcp.WithDescription("Remove every stored capture."),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true.")),
	mcp.WithDestructiveHintAnnotation(true),
)
