// Package memory implementa los repositorios sobre mapas en proceso.
// Respaldo para desarrollo y tests; en producción se usa postgres.
package memory

import (
	"sync"

	"ganado-api/internal/domain/animales"
	"ganado-api/internal/domain/catalogo"
	"ganado-api/internal/domain/estadoanimal"
	"ganado-api/internal/domain/historial"
	"ganado-api/internal/domain/recordatorios"
	"ganado-api/internal/domain/usuarios"
	"ganado-api/internal/domain/ventas"
)

// Store agrupa todas las tablas bajo un mismo mutex para que las
// operaciones compuestas (venta + cambio de estado) sean atómicas
// también acá.
type Store struct {
	mu sync.RWMutex

	categorias    map[string]catalogo.Categoria
	estados       map[string]catalogo.Estado
	roles         map[int]catalogo.Rol
	usuarios      map[string]usuarios.Usuario
	animales      map[string]animales.Animal
	estadosAnimal map[string]estadoanimal.EstadoAnimal
	ventas        map[string]ventas.Venta
	recordatorios map[string]recordatorios.Recordatorio
	historial     map[string]historial.Evento
}

func NewStore() *Store {
	s := &Store{
		categorias:    make(map[string]catalogo.Categoria),
		estados:       make(map[string]catalogo.Estado),
		roles:         make(map[int]catalogo.Rol),
		usuarios:      make(map[string]usuarios.Usuario),
		animales:      make(map[string]animales.Animal),
		estadosAnimal: make(map[string]estadoanimal.EstadoAnimal),
		ventas:        make(map[string]ventas.Venta),
		recordatorios: make(map[string]recordatorios.Recordatorio),
		historial:     make(map[string]historial.Evento),
	}
	s.roles[1] = catalogo.Rol{ID: 1, Nombre: "Administrador", Descripcion: "Acceso total"}
	s.roles[2] = catalogo.Rol{ID: 2, Nombre: "Veterinario", Descripcion: "Gestión sanitaria"}
	return s
}

// AddUsuario siembra un usuario. Pensado para tests y modo dev: el alta
// real de usuarios vive en el servicio de sesiones.
func (s *Store) AddUsuario(u usuarios.Usuario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usuarios[u.ID] = u
}

// ---- lookups de enriquecimiento (llamar con el lock tomado) ----

func (s *Store) nombreAnimal(id string) string {
	if a, ok := s.animales[id]; ok {
		return a.Nombre
	}
	return ""
}

func (s *Store) nombreEstado(id string) string {
	if e, ok := s.estados[id]; ok {
		return e.Nombre
	}
	return ""
}

func (s *Store) nombreUsuario(id string) string {
	if u, ok := s.usuarios[id]; ok {
		return u.Nombre
	}
	return ""
}

func (s *Store) tipoCategoria(id string) string {
	if c, ok := s.categorias[id]; ok {
		return c.Tipo
	}
	return ""
}

func (s *Store) estadoAnimalDe(animalID string) (estadoanimal.EstadoAnimal, bool) {
	for _, e := range s.estadosAnimal {
		if e.AnimalID == animalID {
			return e, true
		}
	}
	return estadoanimal.EstadoAnimal{}, false
}

func (s *Store) ventaDe(animalID string) (ventas.Venta, bool) {
	for _, v := range s.ventas {
		if v.AnimalID == animalID {
			return v, true
		}
	}
	return ventas.Venta{}, false
}
