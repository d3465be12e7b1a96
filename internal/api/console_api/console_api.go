package console_api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/assignments"
	"github.com/BearBump/PetCafe/internal/services/cart"
	"github.com/BearBump/PetCafe/internal/services/checkout"
	"github.com/BearBump/PetCafe/internal/services/petgroups"
	"github.com/BearBump/PetCafe/internal/services/pets"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Catalog is the read-only part of the backend the console passes through.
type Catalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductCategories(ctx context.Context) ([]models.ProductCategory, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListNotifications(ctx context.Context, query url.Values) (cafeapi.List[models.Notification], error)
	ListOrders(ctx context.Context, query url.Values) (cafeapi.List[models.Order], error)
	ListTransactions(ctx context.Context, query url.Values) (cafeapi.List[models.Transaction], error)
}

type Deps struct {
	Pets        *pets.Service
	Groups      *petgroups.Service
	Cart        *cart.Store
	Checkout    *checkout.Service
	Assignments *assignments.Service
	Catalog     Catalog
}

type ConsoleAPI struct {
	Deps

	// SSE heartbeat; tests shorten it.
	heartbeat time.Duration
}

func New(d Deps) *ConsoleAPI {
	return &ConsoleAPI{Deps: d, heartbeat: 25 * time.Second}
}

// Mount registers the console routes under /api plus /health.
func (a *ConsoleAPI) Mount(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(Session)

		r.Route("/pets", func(r chi.Router) {
			r.Get("/", a.listPets)
			r.Post("/", a.createPet)
			r.Get("/form", a.petForm)
			r.Post("/form/species", a.petFormSpecies)
			r.Post("/form/breed", a.petFormBreed)
			r.Post("/validate", a.validatePet)
			r.Get("/health-status-options", a.healthStatusOptions)
			r.Get("/{id}", a.getPet)
			r.Get("/{id}/detail", a.petDetail)
			r.Put("/{id}", a.updatePet)
			r.Delete("/{id}", a.deletePet)
		})
		r.Post("/uploads/pet-image", a.uploadPetImage)
		r.Get("/pet-species", a.listSpecies)
		r.Get("/pet-breeds", a.listBreeds)

		r.Route("/pet-groups", func(r chi.Router) {
			r.Get("/", a.listGroups)
			r.Post("/", a.createGroup)
			r.Get("/status", a.groupStatuses)
			r.Put("/status", a.setGroupStatus)
			r.Put("/{id}", a.updateGroup)
			r.Delete("/{id}", a.deleteGroup)
			r.Get("/{id}/eligibility", a.groupEligibility)
			r.Post("/{id}/pets", a.addGroupPets)
			r.Delete("/{id}/pets/{petId}", a.removeGroupPet)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", a.getCart)
			r.Delete("/", a.clearCart)
			r.Get("/events", a.cartEvents)
			r.Post("/items", a.addCartItem)
			r.Post("/services", a.addCartService)
			r.Post("/items/{id}/increase", a.increaseCartItem)
			r.Post("/items/{id}/decrease", a.decreaseCartItem)
			r.Delete("/items/{id}", a.removeCartItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", a.listCheckouts)
			r.Post("/", a.checkout)
			r.Get("/{orderId}", a.getCheckout)
			r.Post("/{orderId}/confirm", a.confirmCheckout)
		})

		r.Route("/tasks/{taskId}/assignment", func(r chi.Router) {
			r.Get("/", a.getAssignment)
			r.Put("/", a.putAssignment)
			r.Post("/commands", a.applyAssignment)
			r.Post("/submit", a.submitAssignment)
			r.Get("/conflicts", a.assignmentConflicts)
		})

		r.Get("/products", a.listProducts)
		r.Get("/product-categories", a.listProductCategories)
		r.Get("/services", a.listServices)
		r.Get("/teams", a.listTeams)
		r.Get("/teams/{id}", a.getTeam)
		r.Get("/notifications", a.listNotifications)
		r.Get("/orders", a.listOrders)
		r.Get("/transactions", a.listTransactions)
	})
}

// Router builds the full handler chain used by the console binary.
func (a *ConsoleAPI) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)
	a.Mount(r)
	return otelhttp.NewHandler(r, "cafe-console")
}
