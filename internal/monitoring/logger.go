package monitoring

import "log"

// Logf es el logger de diagnóstico del paquete. Por defecto usa log.Printf;
// los tests pueden silenciarlo con SetLogger(nil).
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger reemplaza el logger. nil instala un logger mudo.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
