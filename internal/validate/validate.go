// Package validate checks an inventory against the known managed keys.
//
// Every rule runs independently over every entry and produces at most one
// violation, so a single pass reports all problems.
package validate

import (
	"fmt"

	"sshkm/internal/config"
	apperr "sshkm/internal/error"
	"sshkm/internal/models"
)

// Violation ties a failure to the host it was found on.
type Violation struct {
	Host string
	Err  *apperr.AppError
}

func (v Violation) Error() string {
	return fmt.Sprintf("host '%s': %s", v.Host, v.Err.Error())
}

type rule func(h models.Host, seen map[string]bool, keys models.KeySet) *apperr.AppError

var rules = []rule{
	uniqueName,
	fieldsValid,
	keyResolves,
}

// Validate runs every rule over every host in inventory order.
func Validate(inv *models.Inventory, keys models.KeySet) []Violation {
	var out []Violation
	seen := make(map[string]bool, len(inv.Hosts))
	for _, h := range inv.Hosts {
		for _, r := range rules {
			if err := r(h, seen, keys); err != nil {
				out = append(out, Violation{Host: h.Name, Err: err})
			}
		}
		seen[h.Name] = true
	}
	return out
}

// Errors flattens violations into the aggregate error type; nil when clean.
func Errors(vs []Violation) error {
	agg := make(apperr.Violations, 0, len(vs))
	for _, v := range vs {
		agg = append(agg, apperr.New(v.Err.Type, v.Error(), nil))
	}
	return agg.Err()
}

func uniqueName(h models.Host, seen map[string]bool, _ models.KeySet) *apperr.AppError {
	if seen[h.Name] {
		return apperr.HostExists(h.Name)
	}
	return nil
}

func fieldsValid(h models.Host, _ map[string]bool, _ models.KeySet) *apperr.AppError {
	if err := config.CheckHost(h); err != nil {
		if ae, ok := apperr.As(err); ok {
			return ae
		}
		return apperr.InvalidInput(err.Error())
	}
	return nil
}

func keyResolves(h models.Host, _ map[string]bool, keys models.KeySet) *apperr.AppError {
	if h.Key == "" || keys.Has(h.Key) {
		return nil
	}
	return apperr.KeyNotFound(h.Key)
}
