package fake

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/google/uuid"
)

// Backend is an in-memory café backend. It stands in for the real API when
// api_base_url is empty and backs the service tests.
type Backend struct {
	mu sync.Mutex

	species  []models.Species
	breeds   []models.Breed
	pets     map[string]models.Pet
	groups   map[string]models.PetGroup
	health   map[string][]models.HealthRecord
	vaccines map[string][]models.VaccinationRecord
	products []models.Product
	cats     []models.ProductCategory
	services []models.Service
	teams    []models.Team
	notifs   []models.Notification
	orders   map[string]models.Order
	invoices int

	failures map[string]error
	calls    map[string]int
}

func New() *Backend {
	return &Backend{
		pets:     map[string]models.Pet{},
		groups:   map[string]models.PetGroup{},
		health:   map[string][]models.HealthRecord{},
		vaccines: map[string][]models.VaccinationRecord{},
		orders:   map[string]models.Order{},
		failures: map[string]error{},
		calls:    map[string]int{},
	}
}

// NewSeeded returns a backend with a small café already in it.
func NewSeeded() *Backend {
	b := New()
	b.species = []models.Species{{ID: "sp-cat", Name: "Mèo"}, {ID: "sp-dog", Name: "Chó"}}
	b.breeds = []models.Breed{
		{ID: "br-british", Name: "Anh lông ngắn", SpeciesID: "sp-cat"},
		{ID: "br-persian", Name: "Ba Tư", SpeciesID: "sp-cat"},
		{ID: "br-corgi", Name: "Corgi", SpeciesID: "sp-dog"},
	}
	b.PutPet(models.Pet{ID: "pet-1", Name: "Mochi", SpeciesID: "sp-cat", BreedID: "br-british", Age: 2, Weight: 4.2, Gender: models.GenderFemale, HealthStatus: models.HealthStatusHealthy, ArrivalDate: "2024-03-01"})
	b.PutPet(models.Pet{ID: "pet-2", Name: "Bơ", SpeciesID: "sp-cat", BreedID: "br-persian", Age: 3, Weight: 3.8, Gender: models.GenderMale, HealthStatus: models.HealthStatusHealthy, ArrivalDate: "2023-11-20"})
	b.PutPet(models.Pet{ID: "pet-3", Name: "Lucky", SpeciesID: "sp-dog", BreedID: "br-corgi", Age: 4, Weight: 11.5, Gender: models.GenderMale, HealthStatus: models.HealthStatusRecovering, ArrivalDate: "2022-06-15"})
	b.PutGroup(models.PetGroup{ID: "grp-cats", Name: "Nhóm mèo", PetSpeciesID: "sp-cat"})
	b.products = []models.Product{
		{ID: "prd-latte", Name: "Cà phê sữa", Price: 35000, CategoryID: "cat-drink", Stock: 100},
		{ID: "prd-cake", Name: "Bánh bông lan", Price: 25000, CategoryID: "cat-food", Stock: 40},
	}
	b.cats = []models.ProductCategory{{ID: "cat-drink", Name: "Đồ uống"}, {ID: "cat-food", Name: "Đồ ăn"}}
	b.services = []models.Service{{ID: "srv-groom", Name: "Tắm và cắt tỉa", Price: 150000, DurationMinutes: 60}}
	b.teams = []models.Team{{ID: "team-a", Name: "Ca sáng", LeaderID: "acc-lead", Members: []models.TeamMember{
		{AccountID: "acc-lead", FullName: "Nguyễn Văn A", Role: "LEADER"},
		{AccountID: "acc-2", FullName: "Trần Thị B"},
	}}}
	return b
}

// FailOn makes the next calls of op on id return err. id "" matches any id.
func (b *Backend) FailOn(op, id string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[op+"|"+id] = err
}

// Calls returns how many times op was invoked.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *Backend) enter(op, id string) error {
	b.calls[op]++
	if err, ok := b.failures[op+"|"+id]; ok {
		return err
	}
	if err, ok := b.failures[op+"|"]; ok {
		return err
	}
	return nil
}

func (b *Backend) PutPet(p models.Pet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pets[p.ID] = p
}

func (b *Backend) PutGroup(g models.PetGroup) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups[g.ID] = g
}

// SetOrderStatus simulates the payment provider settling an order.
func (b *Backend) SetOrderStatus(id, status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o, ok := b.orders[id]; ok {
		o.Status = status
		b.orders[id] = o
	}
}

func notFound(what string) error {
	return &cafeapi.APIError{StatusCode: http.StatusNotFound, Message: what + " not found"}
}

func (b *Backend) ListPets(ctx context.Context) ([]models.Pet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListPets", ""); err != nil {
		return nil, err
	}
	out := make([]models.Pet, 0, len(b.pets))
	for _, p := range b.pets {
		out = append(out, clonePet(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *Backend) GetPet(ctx context.Context, id string) (*models.Pet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("GetPet", id); err != nil {
		return nil, err
	}
	p, ok := b.pets[id]
	if !ok {
		return nil, cafeapi.ErrPetNotFound
	}
	p = clonePet(p)
	return &p, nil
}

func (b *Backend) CreatePet(ctx context.Context, p models.Pet) (*models.Pet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("CreatePet", ""); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	b.pets[p.ID] = clonePet(p)
	return &p, nil
}

func (b *Backend) UpdatePet(ctx context.Context, id string, p models.Pet) (*models.Pet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("UpdatePet", id); err != nil {
		return nil, err
	}
	if _, ok := b.pets[id]; !ok {
		return nil, cafeapi.ErrPetNotFound
	}
	p.ID = id
	b.pets[id] = clonePet(p)
	return &p, nil
}

func (b *Backend) DeletePet(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("DeletePet", id); err != nil {
		return err
	}
	if _, ok := b.pets[id]; !ok {
		return cafeapi.ErrPetNotFound
	}
	delete(b.pets, id)
	return nil
}

func (b *Backend) ListHealthRecords(ctx context.Context, petID string) ([]models.HealthRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListHealthRecords", petID); err != nil {
		return nil, err
	}
	return append([]models.HealthRecord{}, b.health[petID]...), nil
}

func (b *Backend) ListVaccinationRecords(ctx context.Context, petID string) ([]models.VaccinationRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListVaccinationRecords", petID); err != nil {
		return nil, err
	}
	return append([]models.VaccinationRecord{}, b.vaccines[petID]...), nil
}

func (b *Backend) HealthStatusOptions(ctx context.Context) ([]models.HealthStatusOption, error) {
	out := make([]models.HealthStatusOption, 0, len(models.HealthStatuses))
	for _, s := range models.HealthStatuses {
		out = append(out, models.HealthStatusOption{Value: s, Label: s})
	}
	return out, nil
}

func (b *Backend) ListSpecies(ctx context.Context) ([]models.Species, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListSpecies", ""); err != nil {
		return nil, err
	}
	return append([]models.Species{}, b.species...), nil
}

func (b *Backend) ListBreeds(ctx context.Context) ([]models.Breed, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListBreeds", ""); err != nil {
		return nil, err
	}
	return append([]models.Breed{}, b.breeds...), nil
}

func (b *Backend) ListGroups(ctx context.Context) ([]models.PetGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListGroups", ""); err != nil {
		return nil, err
	}
	out := make([]models.PetGroup, 0, len(b.groups))
	for _, g := range b.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *Backend) GetGroup(ctx context.Context, id string) (*models.PetGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.groups[id]
	if !ok {
		return nil, notFound("group")
	}
	return &g, nil
}

func (b *Backend) CreateGroup(ctx context.Context, g models.PetGroup) (*models.PetGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("CreateGroup", ""); err != nil {
		return nil, err
	}
	g.ID = uuid.NewString()
	b.groups[g.ID] = g
	return &g, nil
}

func (b *Backend) UpdateGroup(ctx context.Context, id string, g models.PetGroup) (*models.PetGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("UpdateGroup", id); err != nil {
		return nil, err
	}
	if _, ok := b.groups[id]; !ok {
		return nil, notFound("group")
	}
	g.ID = id
	b.groups[id] = g
	return &g, nil
}

func (b *Backend) DeleteGroup(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("DeleteGroup", id); err != nil {
		return err
	}
	if _, ok := b.groups[id]; !ok {
		return notFound("group")
	}
	delete(b.groups, id)
	return nil
}

func (b *Backend) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("CreateOrder", ""); err != nil {
		return nil, err
	}

	var total int64
	for _, l := range req.Products {
		total += b.productPrice(l.ProductID) * int64(l.Quantity)
	}
	for _, l := range req.Services {
		total += b.servicePrice(l.ServiceID) * int64(l.Quantity)
	}

	b.invoices++
	now := time.Now().UTC()
	o := models.Order{
		ID:            uuid.NewString(),
		InvoiceID:     fmt.Sprintf("INV-%06d", b.invoices),
		Status:        models.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   total,
		FullName:      req.FullName,
		Phone:         req.Phone,
		CreatedAt:     &now,
	}
	b.orders[o.ID] = o
	return &o, nil
}

func (b *Backend) ConfirmOrder(ctx context.Context, id string) (*models.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ConfirmOrder", id); err != nil {
		return nil, err
	}
	o, ok := b.orders[id]
	if !ok {
		return nil, notFound("order")
	}
	o.Status = models.OrderStatusPaid
	b.orders[id] = o
	return &o, nil
}

func (b *Backend) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("GetOrder", id); err != nil {
		return nil, err
	}
	o, ok := b.orders[id]
	if !ok {
		return nil, notFound("order")
	}
	return &o, nil
}

func (b *Backend) ListOrders(ctx context.Context, query url.Values) (cafeapi.List[models.Order], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListOrders", ""); err != nil {
		return cafeapi.List[models.Order]{}, err
	}
	out := make([]models.Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceID > out[j].InvoiceID })
	return paginate(out, query), nil
}

func (b *Backend) ListTransactions(ctx context.Context, query url.Values) (cafeapi.List[models.Transaction], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Transaction{}
	for _, o := range b.orders {
		if o.Status != models.OrderStatusPaid {
			continue
		}
		out = append(out, models.Transaction{
			ID: "tx-" + o.ID, OrderID: o.ID, Amount: o.TotalAmount,
			PaymentMethod: o.PaymentMethod, Status: o.Status, CreatedAt: o.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, query), nil
}

func (b *Backend) ListProducts(ctx context.Context) ([]models.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListProducts", ""); err != nil {
		return nil, err
	}
	return append([]models.Product{}, b.products...), nil
}

func (b *Backend) ListProductCategories(ctx context.Context) ([]models.ProductCategory, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.ProductCategory{}, b.cats...), nil
}

func (b *Backend) ListServices(ctx context.Context) ([]models.Service, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListServices", ""); err != nil {
		return nil, err
	}
	return append([]models.Service{}, b.services...), nil
}

func (b *Backend) ListTeams(ctx context.Context) ([]models.Team, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter("ListTeams", ""); err != nil {
		return nil, err
	}
	return append([]models.Team{}, b.teams...), nil
}

func (b *Backend) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.teams {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, notFound("team")
}

func (b *Backend) ListNotifications(ctx context.Context, query url.Values) (cafeapi.List[models.Notification], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return paginate(append([]models.Notification{}, b.notifs...), query), nil
}

func (b *Backend) productPrice(id string) int64 {
	for _, p := range b.products {
		if p.ID == id {
			return p.Price
		}
	}
	return 0
}

func (b *Backend) servicePrice(id string) int64 {
	for _, s := range b.services {
		if s.ID == id {
			return s.Price
		}
	}
	return 0
}

func paginate[T any](items []T, query url.Values) cafeapi.List[T] {
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total := len(items)
	from := min((page-1)*limit, total)
	to := min(from+limit, total)
	return cafeapi.List[T]{
		Items: items[from:to],
		Pagination: &models.Pagination{
			Page: page, Limit: limit, Total: total,
			TotalPages: (total + limit - 1) / limit,
		},
	}
}

func clonePet(p models.Pet) models.Pet {
	if p.GroupID != nil {
		g := *p.GroupID
		p.GroupID = &g
	}
	return p
}
