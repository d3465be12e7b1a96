package checkout

import (
	"github.com/BearBump/PetCafe/internal/models"
	"github.com/pkg/errors"
)

var ErrInvalidTransition = errors.New("Trạng thái đơn hàng không cho phép thao tác này")

var transitions = map[string][]string{
	models.PhaseBrowsing:     {models.PhaseCartBuilding},
	models.PhaseCartBuilding: {models.PhaseCartBuilding, models.PhaseBrowsing, models.PhasePending},
	models.PhasePending:      {models.PhaseConfirmed, models.PhaseAbandoned},
}

func CanTransition(from, to string) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

func Transition(from, to string) (string, error) {
	if !CanTransition(from, to) {
		return from, errors.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
	}
	return to, nil
}

// CartPhase is the phase of an account that has no order in flight.
func CartPhase(c models.Cart) string {
	if len(c.Items) == 0 {
		return models.PhaseBrowsing
	}
	return models.PhaseCartBuilding
}
