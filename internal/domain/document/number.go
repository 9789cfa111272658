// Package document construye y lee números de documento con formato
// <prefijo>-<AAAA>-<MM>-<NNNNNN>, consecutivos por año y mes.
package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SequenceDigits ancho del consecutivo con ceros a la izquierda.
const SequenceDigits = 6

// Format arma el número de documento, p. ej. Format("comp", 2025-03-14, 7) = "comp-2025-03-000007".
func Format(prefix string, date time.Time, seq int) string {
	return fmt.Sprintf("%s-%04d-%02d-%0*d", prefix, date.Year(), int(date.Month()), SequenceDigits, seq)
}

// MonthPrefix parte fija de los números de un mes: "comp-2025-03-".
func MonthPrefix(prefix string, date time.Time) string {
	return fmt.Sprintf("%s-%04d-%02d-", prefix, date.Year(), int(date.Month()))
}

// Sequence extrae el consecutivo final del número. ok=false si no hay o no es numérico.
func Sequence(number string) (seq int, ok bool) {
	i := strings.LastIndex(number, "-")
	if i < 0 || i == len(number)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(number[i+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Next siguiente consecutivo a partir del último número del mes.
// Sin número previo o si no se puede leer, empieza en 1.
func Next(last string) int {
	if last == "" {
		return 1
	}
	n, ok := Sequence(last)
	if !ok {
		return 1
	}
	return n + 1
}
