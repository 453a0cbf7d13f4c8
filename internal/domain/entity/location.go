package entity

// Location representa una ubicación física (piso de venta, bodega, anexo).
type Location struct {
	ID      string
	Name    string
	Address string
}
