package socketio

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"slidesync/core"
)

// Inbound payload shapes. Socket.IO hands arguments over as untyped JSON
// values; each one is re-marshalled into its struct and schema-checked
// before the coordinator sees it.
type (
	// JoinPayload is the body for "join". PresentationID is optional; a
	// fresh id is generated when absent.
	JoinPayload struct {
		Nickname       string `json:"nickname" validate:"max=64"`
		PresentationID string `json:"presentationId" validate:"omitempty,max=64"`
	}

	// AddSlidePayload is the body for "addSlide". Content seeds the new
	// slide and defaults to empty.
	AddSlidePayload struct {
		Content string `json:"content"`
	}

	// EditSlidePayload is the body for "editSlide".
	EditSlidePayload struct {
		SlideID string `json:"slideId" validate:"required"`
		Content string `json:"content"`
	}

	// AssignRolePayload is the body for "assignRole". Creator is not an
	// assignable role; the schema rejects it outright.
	AssignRolePayload struct {
		UserID string `json:"userId" validate:"required"`
		Role   string `json:"role" validate:"required,oneof=editor viewer"`
	}

	// ChangeSlidePayload is the body for "changeSlide".
	ChangeSlidePayload struct {
		Index int `json:"index" validate:"min=0"`
	}

	// ErrorPayload is sent to the initiating socket alone when its event
	// is rejected or fails.
	ErrorPayload struct {
		Event string `json:"event"`
		Error string `json:"error"`
	}
)

var validate = validator.New()

// decodePayload re-marshals a raw Socket.IO argument into dst and runs
// schema validation. Any failure maps to core.ErrMalformed so the caller
// can report it uniformly.
func decodePayload(arg any, dst any) error {
	if arg == nil {
		return fmt.Errorf("missing payload: %w", core.ErrMalformed)
	}
	raw, err := json.Marshal(arg)
	if err != nil {
		return fmt.Errorf("unreadable payload: %w", core.ErrMalformed)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("payload shape mismatch: %w", core.ErrMalformed)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("payload validation failed: %v: %w", err, core.ErrMalformed)
	}
	return nil
}
