package catalog

// Action is an entry of a product row's context menu.
type Action string

const (
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionRestore Action = "restore"
)

// Menu lists the actions offered for a row. Deleted products can only be
// restored.
func Menu(viewDeleted bool) []Action {
	if viewDeleted {
		return []Action{ActionRestore}
	}

	return []Action{ActionEdit, ActionDelete}
}

func (a Action) Label() string {
	switch a {
	case ActionEdit:
		return "Edit"
	case ActionDelete:
		return "Delete"
	case ActionRestore:
		return "Restore"
	}

	return string(a)
}
