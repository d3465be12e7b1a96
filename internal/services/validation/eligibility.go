package validation

import "github.com/BearBump/PetCafe/internal/models"

// Reasons a pet cannot join a group.
const (
	ReasonInOtherGroup    = "in_other_group"
	ReasonSpeciesMismatch = "species_mismatch"
	ReasonBreedMismatch   = "breed_mismatch"
)

// GroupMismatch checks species and breed only.
func GroupMismatch(speciesID, breedID string, g models.PetGroup) string {
	if speciesID != g.PetSpeciesID {
		return ReasonSpeciesMismatch
	}
	if !g.AllBreeds() && breedID != *g.PetBreedID {
		return ReasonBreedMismatch
	}
	return ""
}

// EligibilityReason returns "" when p may be added to g.
func EligibilityReason(p models.Pet, g models.PetGroup) string {
	if p.GroupID != nil && *p.GroupID != "" && *p.GroupID != g.ID {
		return ReasonInOtherGroup
	}
	return GroupMismatch(p.SpeciesID, p.BreedID, g)
}
