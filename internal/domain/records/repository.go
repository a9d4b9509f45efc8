package records

import "context"

// Medium es el slot de persistencia: guarda el store completo como un único
// blob, se lee al arrancar y se sobrescribe entero en cada mutación.
// Read devuelve (nil, nil) si el slot todavía no existe.
type Medium interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, blob []byte) error
}
