package pets

import (
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/listing"
)

// NoGroup filters pets that are not in any group.
const NoGroup = "none"

type Filter struct {
	Search       string
	SpeciesID    string
	BreedID      string
	GroupID      string
	Gender       string
	HealthStatus string
	Page         int
	PageSize     int
}

type Stats struct {
	Total    int            `json:"total"`
	ByGender map[string]int `json:"by_gender"`
	ByHealth map[string]int `json:"by_health_status"`
}

type ListResult struct {
	listing.Page[models.Pet]
	Stats Stats `json:"stats"`
}

func FilterPets(pets []models.Pet, f Filter) []models.Pet {
	out := make([]models.Pet, 0, len(pets))
	for _, p := range pets {
		if !listing.Match(f.Search, p.Name, p.Color) {
			continue
		}
		if f.SpeciesID != "" && p.SpeciesID != f.SpeciesID {
			continue
		}
		if f.BreedID != "" && p.BreedID != f.BreedID {
			continue
		}
		if f.Gender != "" && p.Gender != f.Gender {
			continue
		}
		if f.HealthStatus != "" && p.HealthStatus != f.HealthStatus {
			continue
		}
		switch f.GroupID {
		case "":
		case NoGroup:
			if p.GroupID != nil && *p.GroupID != "" {
				continue
			}
		default:
			if !p.InGroup(f.GroupID) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// PetStats counts over the unpaginated collection.
func PetStats(pets []models.Pet) Stats {
	st := Stats{
		Total:    len(pets),
		ByGender: map[string]int{},
		ByHealth: map[string]int{},
	}
	for _, s := range models.HealthStatuses {
		st.ByHealth[s] = 0
	}
	for _, p := range pets {
		st.ByGender[p.Gender]++
		st.ByHealth[p.HealthStatus]++
	}
	return st
}

func List(pets []models.Pet, f Filter) ListResult {
	filtered := FilterPets(pets, f)
	return ListResult{
		Page:  listing.Paginate(filtered, f.Page, f.PageSize),
		Stats: PetStats(pets),
	}
}
