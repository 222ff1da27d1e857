package models

import "time"

// Digital will trigger conditions.
const (
	WillConditionDeath   = "death"
	WillConditionIllness = "illness"
	WillConditionAbsence = "absence"
	WillConditionOther   = "other"
)

// Digital will actions.
const (
	WillActionHandover = "handover_vault"
	WillActionNotify   = "notify_only"
	WillActionDelete   = "delete_vault"
)

// ValidWillCondition reports whether condition is one of the WillCondition*
// constants.
func ValidWillCondition(condition string) bool {
	switch condition {
	case WillConditionDeath, WillConditionIllness, WillConditionAbsence, WillConditionOther:
		return true
	}
	return false
}

// ValidWillAction reports whether action is one of the WillAction*
// constants.
func ValidWillAction(action string) bool {
	switch action {
	case WillActionHandover, WillActionNotify, WillActionDelete:
		return true
	}
	return false
}

// DigitalWillConfig is an owner's condition-triggered handover policy.
// One active configuration per owner; last write wins; mutated only by the
// owner. There is no state machine here — it is a plain upsert.
type DigitalWillConfig struct {
	// OwnerID keys the configuration.
	OwnerID int64 `json:"-"`

	// OwnerEmail is the lookup key used by the will config endpoints.
	OwnerEmail string `json:"owner_email"`

	// Condition is one of the WillCondition* constants.
	Condition string `json:"condition"`

	// Action is one of the WillAction* constants.
	Action string `json:"action"`

	// BeneficiaryEmail is who receives control when the condition fires.
	BeneficiaryEmail string `json:"beneficiary_email"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (w DigitalWillConfig) TableName() string {
	return "digital_will_configs"
}
