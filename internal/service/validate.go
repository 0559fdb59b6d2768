package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateConfig checks an options group against its struct tags and the
// rules tags cannot express.
func validateConfig(c *domain.DeckConfig) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.New.Ints[1] < c.New.Ints[0] {
		return fmt.Errorf("%w: easy interval %d is shorter than graduating interval %d",
			ErrInvalidConfig, c.New.Ints[1], c.New.Ints[0])
	}
	switch c.Lapse.LeechAction {
	case domain.LeechSuspend, domain.LeechTagOnly:
	default:
		return fmt.Errorf("%w: unknown leech action %d", ErrInvalidConfig, c.Lapse.LeechAction)
	}
	return nil
}

// validateDeckName rejects names with an empty path component.
func validateDeckName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDeckName)
	}
	for _, part := range domain.SplitDeckName(name) {
		if strings.TrimSpace(part) == "" {
			return fmt.Errorf("%w: %q has an empty component", ErrInvalidDeckName, name)
		}
	}
	return nil
}
