package models

import "time"

type PetGroup struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	PetSpeciesID string  `json:"pet_species_id"`
	PetBreedID   *string `json:"pet_breed_id"`
}

// AllBreeds reports whether the group accepts every breed of its species.
func (g PetGroup) AllBreeds() bool {
	return g.PetBreedID == nil || *g.PetBreedID == ""
}

// GroupStatus is one entry of the pet status board.
type GroupStatus struct {
	GroupID   string    `json:"group_id"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}
