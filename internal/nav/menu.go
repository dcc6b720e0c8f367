// Package nav describes the sidebar menu and remembers the user's place in it.
package nav

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/odyssey-erp/masterdesk/internal/i18n"
	"github.com/odyssey-erp/masterdesk/internal/shared"
)

// Item is a menu entry. Items with children are groups.
type Item struct {
	ID       string
	Href     string
	Disabled bool
	Children []Item
}

// Label returns the translated caption of the item.
func (i Item) Label(lang i18n.Lang) string {
	return i18n.T(lang, "nav."+i.ID)
}

// Group reports whether the item holds children.
func (i Item) Group() bool { return len(i.Children) > 0 }

// Menu ids.
const (
	Dashboard         = "dashboard"
	DataManagement    = "data_management"
	Company           = "company"
	User              = "user"
	CostObject        = "cost_object"
	Customer          = "customer"
	Bank              = "bank"
	Inventory         = "inventory"
	Unit              = "unit"
	Invoice           = "invoice"
	ElectronicInvoice = "electronic_invoice"
)

// Menu is the sidebar tree.
var Menu = []Item{
	{ID: Dashboard, Href: "/"},
	{ID: DataManagement, Children: []Item{
		{ID: Company, Disabled: true},
		{ID: User, Href: "/pending/" + User},
		{ID: CostObject, Disabled: true},
		{ID: Customer, Href: "/masterdata/customers"},
		{ID: Bank, Href: "/pending/" + Bank},
		{ID: Inventory, Href: "/masterdata/inventory"},
		{ID: Unit, Href: "/masterdata/units"},
	}},
	{ID: Invoice, Children: []Item{
		{ID: ElectronicInvoice, Disabled: true},
	}},
}

// Find returns the item with id and the id of its parent, empty for top
// level items.
func Find(id string) (Item, string, bool) {
	for _, item := range Menu {
		if item.ID == id {
			return item, "", true
		}
		for _, child := range item.Children {
			if child.ID == id {
				return child, item.ID, true
			}
		}
	}
	return Item{}, "", false
}

// ForPath returns the id of the leaf whose Href prefixes path, the longest
// match winning.
func ForPath(path string) (string, bool) {
	best, bestLen := "", 0
	visit := func(item Item) {
		if item.Href == "" || item.Disabled {
			return
		}
		match := path == item.Href || (item.Href != "/" && strings.HasPrefix(path, item.Href+"/"))
		if match && len(item.Href) > bestLen {
			best, bestLen = item.ID, len(item.Href)
		}
	}
	for _, item := range Menu {
		visit(item)
		for _, child := range item.Children {
			visit(child)
		}
	}
	return best, best != ""
}

// Filter returns the menu restricted to items whose caption contains query,
// ignoring case. A group whose own caption matches keeps all its children.
func Filter(lang i18n.Lang, query string) []Item {
	query = strings.TrimSpace(query)
	if query == "" {
		return Menu
	}
	fold := cases.Fold()
	needle := fold.String(query)
	matches := func(item Item) bool {
		return strings.Contains(fold.String(item.Label(lang)), needle)
	}
	var out []Item
	for _, item := range Menu {
		if !item.Group() {
			if matches(item) {
				out = append(out, item)
			}
			continue
		}
		if matches(item) {
			out = append(out, item)
			continue
		}
		var children []Item
		for _, child := range item.Children {
			if matches(child) {
				children = append(children, child)
			}
		}
		if len(children) > 0 {
			group := item
			group.Children = children
			out = append(out, group)
		}
	}
	return out
}

// State is the navigation state kept in the session.
type State struct {
	ActiveParent string   `json:"active_parent,omitempty"`
	Selected     string   `json:"selected,omitempty"`
	Expanded     []string `json:"expanded,omitempty"`
}

const sessionKey = "nav"

// Load reads the navigation state from the session. A session without one
// starts on the dashboard.
func Load(sess *shared.Session) State {
	state := State{ActiveParent: Dashboard, Selected: Dashboard}
	if sess == nil {
		return state
	}
	var stored State
	if sess.GetJSON(sessionKey, &stored) {
		return stored
	}
	return state
}

// Save writes the navigation state into the session.
func Save(sess *shared.Session, state State) {
	if sess == nil {
		return
	}
	_ = sess.SetJSON(sessionKey, state)
}

// Select applies a click on id. Groups toggle open and become the active
// parent; leaves become selected and open their group. Disabled and unknown
// ids leave the state untouched. It returns the href to follow, empty for
// groups.
func (s *State) Select(id string) (string, bool) {
	item, parent, ok := Find(id)
	if !ok || item.Disabled {
		return "", false
	}
	if item.Group() {
		s.ActiveParent = item.ID
		s.toggle(item.ID)
		return "", true
	}
	s.Selected = item.ID
	if parent == "" {
		s.ActiveParent = item.ID
	} else {
		s.ActiveParent = parent
		s.expand(parent)
	}
	return item.Href, true
}

// Sync marks the leaf serving path as selected without toggling groups.
func (s *State) Sync(path string) bool {
	id, ok := ForPath(path)
	if !ok || id == s.Selected {
		return false
	}
	_, parent, _ := Find(id)
	s.Selected = id
	if parent == "" {
		s.ActiveParent = id
	} else {
		s.ActiveParent = parent
		s.expand(parent)
	}
	return true
}

// IsExpanded reports whether the group id is open.
func (s State) IsExpanded(id string) bool {
	for _, e := range s.Expanded {
		if e == id {
			return true
		}
	}
	return false
}

// IsActive reports whether id is highlighted: the selected leaf, or the
// group holding it.
func (s State) IsActive(id string) bool {
	if id == s.Selected {
		return true
	}
	_, parent, ok := Find(s.Selected)
	return ok && parent == id
}

func (s *State) expand(id string) {
	if !s.IsExpanded(id) {
		s.Expanded = append(s.Expanded, id)
	}
}

func (s *State) toggle(id string) {
	for i, e := range s.Expanded {
		if e == id {
			s.Expanded = append(s.Expanded[:i], s.Expanded[i+1:]...)
			return
		}
	}
	s.Expanded = append(s.Expanded, id)
}
