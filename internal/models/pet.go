package models

const (
	HealthStatusHealthy          = "HEALTHY"
	HealthStatusSick             = "SICK"
	HealthStatusRecovering       = "RECOVERING"
	HealthStatusUnderObservation = "UNDER_OBSERVATION"
	HealthStatusQuarantine       = "QUARANTINE"
)

// HealthStatuses lists the statuses in display order.
var HealthStatuses = []string{
	HealthStatusHealthy,
	HealthStatusSick,
	HealthStatusRecovering,
	HealthStatusUnderObservation,
	HealthStatusQuarantine,
}

const (
	GenderMale    = "MALE"
	GenderFemale  = "FEMALE"
	GenderUnknown = "UNKNOWN"
)

type Pet struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SpeciesID    string  `json:"species_id"`
	BreedID      string  `json:"breed_id"`
	GroupID      *string `json:"group_id"`
	Age          int     `json:"age"`
	Weight       float64 `json:"weight"`
	Gender       string  `json:"gender"`
	Color        string  `json:"color,omitempty"`
	ImageURL     string  `json:"image_url,omitempty"`
	Preferences  string  `json:"preferences,omitempty"`
	SpecialNotes string  `json:"special_notes,omitempty"`
	ArrivalDate  string  `json:"arrival_date,omitempty"`
	HealthStatus string  `json:"health_status"`
}

// InGroup reports whether the pet currently belongs to groupID.
func (p Pet) InGroup(groupID string) bool {
	return p.GroupID != nil && *p.GroupID == groupID
}

type Species struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Breed struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SpeciesID string `json:"species_id"`
}

type HealthRecord struct {
	ID           string  `json:"id"`
	PetID        string  `json:"pet_id"`
	CheckDate    string  `json:"check_date"`
	Status       string  `json:"health_status"`
	Weight       float64 `json:"weight,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	Veterinarian string  `json:"veterinarian,omitempty"`
}

type VaccinationRecord struct {
	ID           string `json:"id"`
	PetID        string `json:"pet_id"`
	VaccineName  string `json:"vaccine_name"`
	VaccinatedAt string `json:"vaccination_date"`
	NextDueDate  string `json:"next_due_date,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// PetDetail is the pet profile together with its sub-resources.
type PetDetail struct {
	Pet          *Pet                `json:"pet"`
	Health       []HealthRecord      `json:"health_records"`
	Vaccinations []VaccinationRecord `json:"vaccination_records"`
}

type HealthStatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
