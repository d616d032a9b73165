package tools

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bigsk1/ollama-tools/core"
)

// FileTools returns the filesystem tools: folder creation, file
// create/write/read/list/delete. Paths are resolved to absolute paths
// relative to the process working directory.
func FileTools() []core.Tool {
	return []core.Tool{
		NewTool(core.ToolDefinition{
			Name:        "create_folder",
			Description: "Create a new folder at the specified path.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"path": StringProperty("The path where the folder should be created"),
			}, "path"),
		}, createFolder),

		NewTool(core.ToolDefinition{
			Name:        "create_file",
			Description: "Create a new file at the specified path with optional content.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"path":    StringProperty("The path where the file should be created"),
				"content": StringProperty("The initial content of the file (optional)"),
			}, "path"),
		}, writeFile),

		NewTool(core.ToolDefinition{
			Name:        "write_to_file",
			Description: "Write content to a file at the specified path.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"path":    StringProperty("The path of the file to write to"),
				"content": StringProperty("The full content to write to the file"),
			}, "path", "content"),
		}, writeFile),

		NewTool(core.ToolDefinition{
			Name:        "read_file",
			Description: "Read the contents of a file at the specified path.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"path": StringProperty("The path of the file to read"),
			}, "path"),
		}, readFile),

		NewTool(core.ToolDefinition{
			Name:        "list_files",
			Description: "List all files and directories in the specified path.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"path": StringProperty("The path of the folder to list (optional, defaults to current directory)"),
			}),
		}, listFiles),

		NewTool(core.ToolDefinition{
			Name:        "delete_file",
			Description: "Delete a file at the specified path.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"path": StringProperty("The path of the file to delete"),
			}, "path"),
		}, deleteFile),
	}
}

func createFolder(ctx context.Context, args map[string]interface{}) (*core.ToolResult, error) {
	path, err := absPathArg(args)
	if err != nil {
		return core.Fail(err.Error()), nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return core.Fail(err.Error()), nil
	}
	log.Printf("[TOOLS] Created folder: %s", path)
	return core.Succeed(map[string]interface{}{
		"message": fmt.Sprintf("Folder created at %s", path),
	}), nil
}

// writeFile backs both create_file and write_to_file; the original tooling
// treated them identically apart from content being optional on create.
func writeFile(ctx context.Context, args map[string]interface{}) (*core.ToolResult, error) {
	path, err := absPathArg(args)
	if err != nil {
		return core.Fail(err.Error()), nil
	}
	content := optStringArg(args, "content", "")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return core.Fail(err.Error()), nil
	}
	log.Printf("[TOOLS] Wrote file: %s", path)
	return core.Succeed(map[string]interface{}{
		"message": fmt.Sprintf("Content written to %s", path),
	}), nil
}

func readFile(ctx context.Context, args map[string]interface{}) (*core.ToolResult, error) {
	path, err := absPathArg(args)
	if err != nil {
		return core.Fail(err.Error()), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return core.Fail(err.Error()), nil
	}
	log.Printf("[TOOLS] Read file: %s", path)
	return core.Succeed(map[string]interface{}{
		"content": string(content),
	}), nil
}

func listFiles(ctx context.Context, args map[string]interface{}) (*core.ToolResult, error) {
	path, err := filepath.Abs(optStringArg(args, "path", "."))
	if err != nil {
		return core.Fail(err.Error()), nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return core.Fail(err.Error()), nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	log.Printf("[TOOLS] Listed files in: %s", path)
	return core.Succeed(map[string]interface{}{
		"files": names,
	}), nil
}

func deleteFile(ctx context.Context, args map[string]interface{}) (*core.ToolResult, error) {
	path, err := absPathArg(args)
	if err != nil {
		return core.Fail(err.Error()), nil
	}
	if err := os.Remove(path); err != nil {
		return core.Fail(err.Error()), nil
	}
	log.Printf("[TOOLS] Deleted file: %s", path)
	return core.Succeed(map[string]interface{}{
		"message": fmt.Sprintf("File deleted: %s", path),
	}), nil
}

func absPathArg(args map[string]interface{}) (string, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}
