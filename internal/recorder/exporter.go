package recorder

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileExporter escribe cada sesión en <Dir>/session-<id>.json
type FileExporter struct {
	Dir string
}

// Export crea el directorio si hace falta y escribe el archivo
func (f FileExporter) Export(sessionID string, data []byte) (string, error) {
	dir := f.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creando directorio %s: %w", dir, err)
	}

	file := filepath.Join(dir, fmt.Sprintf("session-%s.json", sessionID))
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return "", fmt.Errorf("error escribiendo %s: %w", file, err)
	}
	return file, nil
}
