package selection

import (
	"sync"

	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
)

// Line is the part of a cart line the selection cares about.
type Line struct {
	ID    string
	Stock int
}

// Manager tracks which cart lines are selected for checkout.
//
// The first reconcile that sees at least one in-stock line while nothing is selected selects every
// in-stock line. That auto-select happens at most once per manager: it is consumed by the
// auto-select itself or by any explicit Toggle/SelectAll, and the manager never re-arms it.
type Manager struct {
	mu       sync.Mutex
	order    []string
	inStock  map[string]bool
	selected map[string]struct{}
	armed    bool
}

// NewManager returns a manager with the auto-select latch armed.
func NewManager() *Manager {
	return &Manager{
		inStock:  map[string]bool{},
		selected: map[string]struct{}{},
		armed:    true,
	}
}

// Reconcile applies a fresh cart snapshot. Selected ids that disappeared or ran out of stock are dropped.
func (m *Manager) Reconcile(lines []Line) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = m.order[:0]
	m.inStock = make(map[string]bool, len(lines))
	for _, line := range lines {
		if _, seen := m.inStock[line.ID]; seen {
			continue
		}
		m.order = append(m.order, line.ID)
		m.inStock[line.ID] = line.Stock > 0
	}

	for id := range m.selected {
		if !m.inStock[id] {
			delete(m.selected, id)
		}
	}

	if m.armed && len(m.selected) == 0 && m.anyInStockLocked() {
		m.selectAllLocked(true)
		m.armed = false
	}
}

// Toggle flips the selection of id and reports the new state.
func (m *Manager) Toggle(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inStock, known := m.inStock[id]
	if !known {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product is not in the cart").
			WithDetails(map[string]any{"product_id": id})
	}
	if !inStock {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock").
			WithDetails(map[string]any{"product_id": id})
	}

	m.armed = false
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
		return false, nil
	}
	m.selected[id] = struct{}{}
	return true, nil
}

// SelectAll selects every in-stock line, or clears the selection.
func (m *Manager) SelectAll(selected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = false
	m.selectAllLocked(selected)
}

// Selected returns the selected ids in cart order.
func (m *Manager) Selected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.selected))
	for _, id := range m.order {
		if _, ok := m.selected[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsSelected reports whether id is selected.
func (m *Manager) IsSelected(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.selected[id]
	return ok
}

// AllSelected reports whether every in-stock line is selected. An empty cart is never all-selected.
func (m *Manager) AllSelected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.anyInStockLocked() {
		return false
	}
	for id, inStock := range m.inStock {
		if !inStock {
			continue
		}
		if _, ok := m.selected[id]; !ok {
			return false
		}
	}
	return true
}

// AutoSelectArmed reports whether the one-time auto-select is still pending.
func (m *Manager) AutoSelectArmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

func (m *Manager) selectAllLocked(selected bool) {
	m.selected = make(map[string]struct{}, len(m.inStock))
	if !selected {
		return
	}
	for id, inStock := range m.inStock {
		if inStock {
			m.selected[id] = struct{}{}
		}
	}
}

func (m *Manager) anyInStockLocked() bool {
	for _, inStock := range m.inStock {
		if inStock {
			return true
		}
	}
	return false
}
