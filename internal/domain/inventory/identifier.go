package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatIdentifier arma prefix + número con ceros a la izquierda hasta width dígitos.
// Si el número supera el ancho, se usa completo.
func FormatIdentifier(prefix string, seq int64, width int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, seq)
}

// ParseSequence extrae el sufijo numérico de un id con forma prefix+dígitos.
func ParseSequence(prefix, id string) (int64, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	digits := id[len(prefix):]
	if digits == "" || len(digits) > 18 {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FallbackIdentifier genera un id derivado del reloj cuando se agotan los reintentos.
// Lleva una "T" para no confundirse con la secuencia prefix+dígitos.
func FallbackIdentifier(prefix string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s%sT%s%06d", prefix, now.Format("20060102"), now.Format("150405"), now.Nanosecond()/1000)
}
