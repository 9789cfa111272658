package inventory

import "fmt"

// AvailableAfterResize recalcula la cantidad disponible de un lote cuando cambia la cantidad recibida.
// Lo ya consumido por facturas (cantidad - disponible) se conserva; si la nueva cantidad
// queda por debajo de lo consumido se devuelve error.
func AvailableAfterResize(oldQuantity, oldAvailable, newQuantity int) (int, error) {
	consumed := oldQuantity - oldAvailable
	if consumed < 0 {
		consumed = 0
	}
	if newQuantity < consumed {
		return 0, fmt.Errorf("la cantidad %d es menor que las %d unidades ya consumidas del lote", newQuantity, consumed)
	}
	return newQuantity - consumed, nil
}

// ValidAvailable indica si la cantidad disponible respeta 0 <= disponible <= cantidad.
func ValidAvailable(quantity, available int) bool {
	return available >= 0 && available <= quantity
}
