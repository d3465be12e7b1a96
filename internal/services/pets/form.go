package pets

import (
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/validation"
)

// Form is the pet form state. Species, breed and group selections are kept
// consistent by the transition methods.
type Form struct {
	Input validation.PetInput `json:"input"`

	refs validation.Refs
}

// FormOptions are the choices a form currently offers.
type FormOptions struct {
	Breeds []models.Breed    `json:"breeds"`
	Groups []models.PetGroup `json:"groups"`
}

func NewForm(in validation.PetInput, refs validation.Refs) *Form {
	return &Form{Input: in, refs: refs}
}

// OnSpeciesChanged sets the species and clears breed and group in one step.
func (f *Form) OnSpeciesChanged(speciesID string) {
	if speciesID == f.Input.SpeciesID {
		return
	}
	f.Input.SpeciesID = speciesID
	f.Input.BreedID = ""
	f.Input.GroupID = ""
}

// OnBreedChanged sets the breed and drops a group that no longer fits.
func (f *Form) OnBreedChanged(breedID string) {
	f.Input.BreedID = breedID
	if f.Input.GroupID == "" {
		return
	}
	for _, g := range f.refs.GroupsFor(f.Input.SpeciesID, breedID) {
		if g.ID == f.Input.GroupID {
			return
		}
	}
	f.Input.GroupID = ""
}

func (f *Form) Options() FormOptions {
	if f.Input.SpeciesID == "" {
		return FormOptions{Breeds: []models.Breed{}, Groups: []models.PetGroup{}}
	}
	return FormOptions{
		Breeds: f.refs.BreedsOf(f.Input.SpeciesID),
		Groups: f.refs.GroupsFor(f.Input.SpeciesID, f.Input.BreedID),
	}
}
