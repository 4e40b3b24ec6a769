package validator

import "github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"

// Actions gated by role. Adjustments rewrite balances and are admin-only;
// undo deletes the newest ledger row as a compensating action.
const (
	ActionAdjust        = "inventory.adjust"
	ActionUndo          = "inventory.undo"
	ActionManageCatalog = "catalog.manage"
)

// Can is the single capability check used for every role-gated action.
func Can(role string, action string) bool {
	switch action {
	case ActionAdjust, ActionUndo, ActionManageCatalog:
		return role == domain.RoleAdmin
	default:
		return role == domain.RoleAdmin || role == domain.RoleOperator
	}
}
