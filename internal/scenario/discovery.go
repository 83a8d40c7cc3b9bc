package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MarcosBrindi/pathsynq/internal/monitoring"
)

// Origen de un escenario
const (
	SourceBuiltin = "builtin"
	SourceYAML    = "yaml"
)

// ScenarioInfo contiene información de un escenario disponible
type ScenarioInfo struct {
	ID       string // "recorrido_urbano", "yaml_mi_ruta"
	Name     string // "Recorrido Urbano", "Mi Ruta (YAML)"
	Source   string // "builtin" o "yaml"
	FilePath string // Ruta al archivo YAML (si es yaml)
}

// DiscoverScenarios encuentra todos los escenarios disponibles
func DiscoverScenarios(yamlDir string) []ScenarioInfo {
	scenarios := make([]ScenarioInfo, 0)

	// 1. Escenarios predefinidos
	for _, id := range BuiltinIDs() {
		s, _ := Builtin(id)
		scenarios = append(scenarios, ScenarioInfo{ID: id, Name: s.Name, Source: SourceBuiltin})
	}

	// 2. Archivos YAML del directorio
	if yamlDir != "" {
		scenarios = append(scenarios, discoverYAMLScenarios(yamlDir)...)
	}
	return scenarios
}

// Resolve carga el escenario id: builtin o yaml_<archivo> dentro de yamlDir
func Resolve(id, yamlDir string) (*Scenario, error) {
	if s, ok := Builtin(id); ok {
		return s, nil
	}
	for _, info := range discoverYAMLScenarios(yamlDir) {
		if info.ID == id {
			return LoadScenario(info.FilePath)
		}
	}
	return nil, fmt.Errorf("escenario '%s' no encontrado", id)
}

// discoverYAMLScenarios busca archivos .yaml/.yml en un directorio
func discoverYAMLScenarios(dir string) []ScenarioInfo {
	scenarios := make([]ScenarioInfo, 0)
	if dir == "" {
		return scenarios
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			monitoring.Logf("⚠️  Error leyendo directorio de escenarios: %v", err)
		}
		return scenarios
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(file.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		baseName := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		scenarios = append(scenarios, ScenarioInfo{
			ID:       "yaml_" + baseName,
			Name:     titleCase(strings.ReplaceAll(baseName, "_", " ")) + " (YAML)",
			Source:   SourceYAML,
			FilePath: filepath.Join(dir, file.Name()),
		})
	}
	return scenarios
}

// titleCase capitaliza la primera letra de cada palabra
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
