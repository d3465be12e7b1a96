package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/BearBump/PetCafe/internal/models"
)

// FlexString takes a form value sent either as a JSON string or a number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// PetInput is the raw pet form as submitted.
type PetInput struct {
	Name         string     `json:"name"`
	SpeciesID    string     `json:"species_id"`
	BreedID      string     `json:"breed_id"`
	GroupID      string     `json:"group_id"`
	Age          FlexString `json:"age"`
	Weight       FlexString `json:"weight"`
	Gender       string     `json:"gender"`
	Color        string     `json:"color"`
	ImageURL     string     `json:"image_url"`
	Preferences  string     `json:"preferences"`
	SpecialNotes string     `json:"special_notes"`
	ArrivalDate  string     `json:"arrival_date"`
	HealthStatus string     `json:"health_status"`
}

type GroupInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	PetSpeciesID string `json:"pet_species_id"`
	PetBreedID   string `json:"pet_breed_id"`
}

// Refs is the reference data the forms select from.
type Refs struct {
	Species []models.Species
	Breeds  []models.Breed
	Groups  []models.PetGroup
}

func (r Refs) hasSpecies(id string) bool {
	for _, s := range r.Species {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (r Refs) breed(id string) (models.Breed, bool) {
	for _, b := range r.Breeds {
		if b.ID == id {
			return b, true
		}
	}
	return models.Breed{}, false
}

func (r Refs) group(id string) (models.PetGroup, bool) {
	for _, g := range r.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return models.PetGroup{}, false
}

// BreedsOf returns breeds belonging to speciesID.
func (r Refs) BreedsOf(speciesID string) []models.Breed {
	out := []models.Breed{}
	for _, b := range r.Breeds {
		if b.SpeciesID == speciesID {
			out = append(out, b)
		}
	}
	return out
}

// GroupsFor returns groups a pet of speciesID/breedID may join.
func (r Refs) GroupsFor(speciesID, breedID string) []models.PetGroup {
	out := []models.PetGroup{}
	for _, g := range r.Groups {
		if GroupMismatch(speciesID, breedID, g) == "" {
			out = append(out, g)
		}
	}
	return out
}

func ValidatePet(in PetInput, refs Refs, now time.Time) FieldErrors {
	errs := FieldErrors{}
	errs.add("name", ValidateName(in.Name))
	errs.add("age", ValidateAge(string(in.Age)))
	errs.add("weight", ValidateWeight(string(in.Weight)))
	errs.add("gender", ValidateGender(in.Gender))
	errs.add("arrival_date", ValidateArrivalDate(in.ArrivalDate, now))
	errs.add("health_status", ValidateHealthStatus(in.HealthStatus))
	errs.add("color", ValidateMaxLen("Màu sắc", in.Color, ColorMaxLen))
	errs.add("preferences", ValidateMaxLen("Sở thích", in.Preferences, TextMaxLen))
	errs.add("special_notes", ValidateMaxLen("Ghi chú", in.SpecialNotes, TextMaxLen))

	switch {
	case in.SpeciesID == "":
		errs.add("species_id", "Vui lòng chọn loài")
	case !refs.hasSpecies(in.SpeciesID):
		errs.add("species_id", "Loài không tồn tại")
	}

	if in.BreedID == "" {
		errs.add("breed_id", "Vui lòng chọn giống")
	} else if b, ok := refs.breed(in.BreedID); !ok || b.SpeciesID != in.SpeciesID {
		errs.add("breed_id", "Giống không thuộc loài đã chọn")
	}

	if in.GroupID != "" {
		g, ok := refs.group(in.GroupID)
		switch {
		case !ok:
			errs.add("group_id", "Nhóm không tồn tại")
		case GroupMismatch(in.SpeciesID, in.BreedID, g) != "":
			errs.add("group_id", "Thú cưng không phù hợp với nhóm đã chọn")
		}
	}
	return errs
}

// ToPet converts a validated input. Unparsable numbers become zero.
func ToPet(in PetInput) models.Pet {
	age, _ := strconv.Atoi(strings.TrimSpace(string(in.Age)))
	weight, _ := strconv.ParseFloat(strings.TrimSpace(string(in.Weight)), 64)
	status := in.HealthStatus
	if status == "" {
		status = models.HealthStatusHealthy
	}
	var groupID *string
	if in.GroupID != "" {
		g := in.GroupID
		groupID = &g
	}
	return models.Pet{
		Name:         strings.TrimSpace(in.Name),
		SpeciesID:    in.SpeciesID,
		BreedID:      in.BreedID,
		GroupID:      groupID,
		Age:          age,
		Weight:       weight,
		Gender:       in.Gender,
		Color:        in.Color,
		ImageURL:     in.ImageURL,
		Preferences:  in.Preferences,
		SpecialNotes: in.SpecialNotes,
		ArrivalDate:  in.ArrivalDate,
		HealthStatus: status,
	}
}

func ValidateGroup(in GroupInput, refs Refs) FieldErrors {
	errs := FieldErrors{}
	errs.add("name", ValidateGroupName(in.Name))
	errs.add("description", ValidateMaxLen("Mô tả", in.Description, TextMaxLen))

	switch {
	case in.PetSpeciesID == "":
		errs.add("pet_species_id", "Vui lòng chọn loài")
	case !refs.hasSpecies(in.PetSpeciesID):
		errs.add("pet_species_id", "Loài không tồn tại")
	}
	if in.PetBreedID != "" {
		if b, ok := refs.breed(in.PetBreedID); !ok || b.SpeciesID != in.PetSpeciesID {
			errs.add("pet_breed_id", "Giống không thuộc loài đã chọn")
		}
	}
	return errs
}

func ToGroup(in GroupInput) models.PetGroup {
	var breed *string
	if in.PetBreedID != "" {
		b := in.PetBreedID
		breed = &b
	}
	return models.PetGroup{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		PetSpeciesID: in.PetSpeciesID,
		PetBreedID:   breed,
	}
}

// FromPet fills a form from an existing record, for editing.
func FromPet(p models.Pet) PetInput {
	in := PetInput{
		Name:         p.Name,
		SpeciesID:    p.SpeciesID,
		BreedID:      p.BreedID,
		Age:          FlexString(strconv.Itoa(p.Age)),
		Weight:       FlexString(strconv.FormatFloat(p.Weight, 'f', -1, 64)),
		Gender:       p.Gender,
		Color:        p.Color,
		ImageURL:     p.ImageURL,
		Preferences:  p.Preferences,
		SpecialNotes: p.SpecialNotes,
		ArrivalDate:  p.ArrivalDate,
		HealthStatus: p.HealthStatus,
	}
	if p.GroupID != nil {
		in.GroupID = *p.GroupID
	}
	return in
}
