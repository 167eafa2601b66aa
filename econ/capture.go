package econ

import "github.com/nstehr/quartermaster/model"

// JoinCaptured is called when target changes hands to caster's faction. If
// caster belongs to one of this faction's forces, target joins the same
// force and group and is ordered to guard caster.
func (m *Manager) JoinCaptured(w World, caster, target *model.Unit) bool {
	p := w.Player(caster.Owner)
	if p == nil || !p.AI || caster.Owner != m.State.Player {
		return false
	}
	f := m.State.ForceOf(caster.ID)
	if f == nil {
		return false
	}
	if !f.Has(target.ID) {
		f.Units = append(f.Units, target.ID)
	}
	target.GroupID = caster.GroupID
	w.Issue(model.Command{Unit: target.ID, Order: &model.DefendOrder{Target: caster.ID}})
	m.Logger.Debug("captured unit joined force", "unit", target.ID, "force", f.ID)
	return true
}

// AddToForce puts a unit in force id, creating the force if needed.
func (m *Manager) AddToForce(id int, unit int) {
	for _, f := range m.State.Forces {
		if f.ID == id {
			if !f.Has(unit) {
				f.Units = append(f.Units, unit)
			}
			return
		}
	}
	m.State.Forces = append(m.State.Forces, &Force{ID: id, Units: []int{unit}})
}
