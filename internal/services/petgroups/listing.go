package petgroups

import (
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/listing"
)

type Filter struct {
	Search    string
	SpeciesID string
	Page      int
	PageSize  int
}

type GroupRow struct {
	models.PetGroup
	PetCount int `json:"pet_count"`
}

type ListResult struct {
	listing.Page[GroupRow]
	Unassigned int `json:"unassigned_pets"`
}

func List(groups []models.PetGroup, pets []models.Pet, f Filter) ListResult {
	counts := make(map[string]int, len(groups))
	unassigned := 0
	for _, p := range pets {
		if p.GroupID == nil || *p.GroupID == "" {
			unassigned++
			continue
		}
		counts[*p.GroupID]++
	}

	rows := make([]GroupRow, 0, len(groups))
	for _, g := range groups {
		if !listing.Match(f.Search, g.Name, g.Description) {
			continue
		}
		if f.SpeciesID != "" && g.PetSpeciesID != f.SpeciesID {
			continue
		}
		rows = append(rows, GroupRow{PetGroup: g, PetCount: counts[g.ID]})
	}
	return ListResult{
		Page:       listing.Paginate(rows, f.Page, f.PageSize),
		Unassigned: unassigned,
	}
}
