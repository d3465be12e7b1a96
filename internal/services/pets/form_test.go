package pets

import (
	"testing"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/validation"
	"github.com/stretchr/testify/require"
)

func formRefs() validation.Refs {
	persian := "br-persian"
	return validation.Refs{
		Species: []models.Species{{ID: "cat"}, {ID: "dog"}},
		Breeds: []models.Breed{
			{ID: "br-persian", SpeciesID: "cat"},
			{ID: "br-british", SpeciesID: "cat"},
			{ID: "br-corgi", SpeciesID: "dog"},
		},
		Groups: []models.PetGroup{
			{ID: "g-cats", PetSpeciesID: "cat"},
			{ID: "g-persian", PetSpeciesID: "cat", PetBreedID: &persian},
			{ID: "g-dogs", PetSpeciesID: "dog"},
		},
	}
}

func TestForm_SpeciesChangeClearsBreedAndGroup(t *testing.T) {
	f := NewForm(validation.PetInput{SpeciesID: "cat", BreedID: "br-persian", GroupID: "g-persian"}, formRefs())

	f.OnSpeciesChanged("dog")
	require.Equal(t, "dog", f.Input.SpeciesID)
	require.Empty(t, f.Input.BreedID)
	require.Empty(t, f.Input.GroupID)

	opts := f.Options()
	require.Len(t, opts.Breeds, 1)
	require.Equal(t, "g-dogs", opts.Groups[0].ID)
}

func TestForm_SameSpeciesKeepsSelection(t *testing.T) {
	f := NewForm(validation.PetInput{SpeciesID: "cat", BreedID: "br-persian", GroupID: "g-persian"}, formRefs())
	f.OnSpeciesChanged("cat")
	require.Equal(t, "br-persian", f.Input.BreedID)
	require.Equal(t, "g-persian", f.Input.GroupID)
}

func TestForm_BreedChange(t *testing.T) {
	f := NewForm(validation.PetInput{SpeciesID: "cat", BreedID: "br-persian", GroupID: "g-persian"}, formRefs())
	f.OnBreedChanged("br-british")
	require.Empty(t, f.Input.GroupID)

	f = NewForm(validation.PetInput{SpeciesID: "cat", BreedID: "br-persian", GroupID: "g-cats"}, formRefs())
	f.OnBreedChanged("br-british")
	require.Equal(t, "g-cats", f.Input.GroupID)
}

func TestForm_NoSpeciesNoOptions(t *testing.T) {
	opts := NewForm(validation.PetInput{}, formRefs()).Options()
	require.Empty(t, opts.Breeds)
	require.Empty(t, opts.Groups)
}
